package illustrate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

// Position 是水印在图片上的位置。
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
	Center      Position = "center"
)

const (
	watermarkPadding = 20
	fontScale        = 0.05
)

// ErrUnsupportedPosition 表示未知的水印位置。
var ErrUnsupportedPosition = errors.New("unsupported watermark position")

var watermarkColor = color.NRGBA{R: 255, G: 255, B: 255, A: 128}

// ParsePosition 解析位置字符串，空字符串默认右下角。
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return BottomRight, nil
	case TopLeft, TopRight, BottomLeft, BottomRight, Center:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPosition, s)
}

// Compositor 在图片上绘制半透明文字水印。字体只在构造时加载一次，可并发使用。
type Compositor struct {
	font   *opentype.Font
	logger *zap.Logger
}

// NewCompositor 加载 fontPath 指向的 TrueType/OpenType 字体。
// 路径为空或字体无法加载时退回内置字体，不返回错误。
func NewCompositor(fontPath string, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Compositor{logger: logger}
	if fontPath == "" {
		return c
	}
	data, err := os.ReadFile(fontPath)
	if err == nil {
		c.font, err = opentype.Parse(data)
	}
	if err != nil {
		logger.Warn("watermark font unavailable, using built-in font", zap.String("font", fontPath), zap.Error(err))
	}
	return c
}

// Composite 把 text 以 50% 透明度的白色绘制在 position 指定的角落，返回 PNG 字节。
// 输出保持原图尺寸。
func (c *Compositor) Composite(img []byte, text string, position Position) ([]byte, error) {
	switch position {
	case TopLeft, TopRight, BottomLeft, BottomRight, Center:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPosition, position)
	}
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := src.Bounds()

	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	if text != "" {
		overlay := image.NewNRGBA(bounds)
		face := c.face(min(bounds.Dx(), bounds.Dy()))
		d := &font.Drawer{Dst: overlay, Src: image.NewUniform(watermarkColor), Face: face}
		box, _ := d.BoundString(text)
		tw := (box.Max.X - box.Min.X).Ceil()
		th := (box.Max.Y - box.Min.Y).Ceil()
		x, y := origin(position, bounds.Dx(), bounds.Dy(), tw, th)
		d.Dot = fixed.Point26_6{
			X: fixed.I(bounds.Min.X+x) - box.Min.X,
			Y: fixed.I(bounds.Min.Y+y) - box.Min.Y,
		}
		d.DrawString(text)
		_ = face.Close()
		draw.Draw(dst, bounds, overlay, bounds.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// face 返回字号为短边 5% 的字体；没有可用字体时使用 basicfont。
func (c *Compositor) face(shortSide int) font.Face {
	size := int(float64(shortSide) * fontScale)
	if size < 1 {
		size = 1
	}
	if c.font != nil {
		f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return f
		}
		c.logger.Warn("watermark face creation failed, using built-in font", zap.Error(err))
	}
	return basicfont.Face7x13
}

// origin 计算文字左上角坐标，四角留 20 像素边距。
func origin(p Position, w, h, tw, th int) (x, y int) {
	switch p {
	case BottomRight:
		return w - tw - watermarkPadding, h - th - watermarkPadding
	case BottomLeft:
		return watermarkPadding, h - th - watermarkPadding
	case TopRight:
		return w - tw - watermarkPadding, watermarkPadding
	case Center:
		return (w - tw) / 2, (h - th) / 2
	default:
		return watermarkPadding, watermarkPadding
	}
}
