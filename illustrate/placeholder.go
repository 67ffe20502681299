package illustrate

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
)

// Placeholder 在本地生成纯色渐变图，用于离线调试（image.provider: placeholder）。
// 颜色由提示词决定，同一提示词得到相同的图片。
type Placeholder struct {
	Width, Height int
}

func (p Placeholder) Synthesize(ctx context.Context, prompt string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSynthesis, err)
	}
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = 512, 512
	}
	sum := fnv.New32a()
	_, _ = sum.Write([]byte(prompt))
	seed := sum.Sum32()
	base := color.NRGBA{R: uint8(seed), G: uint8(seed >> 8), B: uint8(seed >> 16), A: 255}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		shade := uint8(y * 96 / h)
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: base.R / 2, G: base.G/2 + shade, B: base.B / 2, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSynthesis, err)
	}
	return buf.Bytes(), nil
}
