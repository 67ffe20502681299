package pipeline

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auto_seo_article_generator/article"
	"auto_seo_article_generator/illustrate"

	"go.uber.org/zap"
)

// 文件名中保留的提示词长度。
const promptNameLen = 30

var nameReplacer = strings.NewReplacer(
	" ", "_", "\t", "_", "\n", "_", "\r", "_",
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// imageName 返回 {时间戳}_{提示词前 30 字}_{id}{ext}。
func imageName(stamp time.Time, prompt, id, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", stamp.Format("20060102_150405"),
		nameReplacer.Replace(article.Truncate(strings.TrimSpace(prompt), promptNameLen)), id, ext)
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// saveImages 把配图写入 dir，写入失败的图片被跳过。
func (p *Pipeline) saveImages(dir string, ills []illustrate.Illustration) ([]string, []string) {
	if len(ills) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.logger.Warn("create image dir failed", zap.String("dir", dir), zap.Error(err))
		return nil, []string{fmt.Sprintf("create image dir: %v", err)}
	}
	stamp := p.now()
	var paths, warnings []string
	for _, il := range ills {
		path := filepath.Join(dir, imageName(stamp, il.Slot.Prompt, p.newID(), imageExt(il.Image)))
		if err := os.WriteFile(path, il.Image, 0o644); err != nil {
			p.logger.Warn("save image failed", zap.String("path", path), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("save image: %v", err))
			continue
		}
		p.logger.Info("image saved", zap.String("path", path), zap.Int("block", il.Slot.Index))
		paths = append(paths, path)
	}
	return paths, warnings
}
