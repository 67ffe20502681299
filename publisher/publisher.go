// Package publisher 把组装好的文档写成 .docx 与独立 HTML 文件。
package publisher

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"auto_seo_article_generator/document"

	"go.uber.org/zap"
)

// ErrEmptyDocument 表示文档既无标题也无正文，不写出文件。
var ErrEmptyDocument = errors.New("publisher: empty document")

// 与文件名中时间戳对应的格式：article_20240102_150405.docx。
const stampLayout = "20060102_150405"

// Files 是一次发布写出的文件路径。
type Files struct {
	DOCX string `json:"docx"`
	HTML string `json:"html,omitempty"`
}

// Publisher 把文档写入输出目录。
type Publisher struct {
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

// New 创建 Publisher，logger 为 nil 时不输出日志。
func New(outputDir string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{outputDir: outputDir, logger: logger, now: time.Now}
}

// Publish 写出 .docx，withHTML 为 true 时再写一份同名 HTML。
func (p *Publisher) Publish(doc document.Document, withHTML bool) (Files, error) {
	stamp := p.now()
	docx, err := p.writeDOCX(doc, stamp)
	if err != nil {
		return Files{}, err
	}
	files := Files{DOCX: docx}
	if withHTML {
		html, err := p.writeHTML(doc, stamp)
		if err != nil {
			return files, err
		}
		files.HTML = html
	}
	return files, nil
}

// WriteDOCX 写出 article_{时间戳}.docx 并返回路径。
func (p *Publisher) WriteDOCX(doc document.Document) (string, error) {
	return p.writeDOCX(doc, p.now())
}

// WriteHTML 写出 article_{时间戳}.html 并返回路径。
func (p *Publisher) WriteHTML(doc document.Document) (string, error) {
	return p.writeHTML(doc, p.now())
}

func (p *Publisher) writeDOCX(doc document.Document, stamp time.Time) (string, error) {
	if doc.Empty() {
		return "", ErrEmptyDocument
	}
	var buf bytes.Buffer
	if err := encodeDOCX(&buf, doc, stamp, p.logger); err != nil {
		return "", err
	}
	return p.save(stamp, ".docx", buf.Bytes())
}

func (p *Publisher) writeHTML(doc document.Document, stamp time.Time) (string, error) {
	if doc.Empty() {
		return "", ErrEmptyDocument
	}
	page, err := renderHTML(doc, p.outputDir)
	if err != nil {
		return "", err
	}
	return p.save(stamp, ".html", page)
}

func (p *Publisher) save(stamp time.Time, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("publisher: create output dir: %w", err)
	}
	base := filepath.Join(p.outputDir, "article_"+stamp.Format(stampLayout))
	path := base + ext
	// 同一秒内的多次输出不覆盖已有文件
	for i := 1; fileExists(path); i++ {
		path = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("publisher: write %s: %w", path, err)
	}
	p.logger.Info("document saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
