package document

import (
	"fmt"
	"os"

	"auto_seo_article_generator/article"
	"auto_seo_article_generator/seo"

	"go.uber.org/zap"
)

// imageEvery 表示每隔几个正文块插入一张图片。
const imageEvery = 3

// Assembler 负责图文混排。
type Assembler struct {
	logger *zap.Logger
	exists func(path string) bool
}

// NewAssembler 创建 Assembler。
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger, exists: fileExists}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Caption 返回第 n 张图（从 1 开始）的图注。
func Caption(n int) string {
	return fmt.Sprintf("图%d", n)
}

// Assemble 剥离元信息后把文本和图片组装成文档。
//
// 每第 3、6、9… 个正文块之后插入一张图片，剩余图片追加到文末。
// 图片文件不存在时跳过并记录警告，其余图片的编号不变。
// 空文本得到空文档，不放任何图片。
func (a *Assembler) Assemble(text string, images []string) Document {
	title, hasTitle, blocks := seo.Body(text)
	var doc Document
	if hasTitle {
		doc.Title = title
	}
	if !hasTitle && len(blocks) == 0 {
		return doc
	}

	next := 0
	for i, blk := range blocks {
		if blk.Kind == article.KindHeading {
			doc.Blocks = append(doc.Blocks, Block{Kind: Heading, Level: min(blk.Level, MaxHeadingLevel), Text: blk.Text})
			// 同一块内紧跟标题的正文与标题占同一个位置
			if blk.Body != "" {
				doc.Blocks = append(doc.Blocks, Block{Kind: Paragraph, Text: blk.Body})
			}
		} else {
			doc.Blocks = append(doc.Blocks, Block{Kind: Paragraph, Text: blk.Text})
		}
		if pos := i + 1; pos > 1 && pos%imageEvery == 0 && next < len(images) {
			a.appendImage(&doc, images[next], next+1)
			next++
		}
	}
	for ; next < len(images); next++ {
		a.appendImage(&doc, images[next], next+1)
	}
	return doc
}

func (a *Assembler) appendImage(doc *Document, path string, n int) {
	if !a.exists(path) {
		a.logger.Warn("image file missing, skipped", zap.String("path", path), zap.String("caption", Caption(n)))
		return
	}
	doc.Blocks = append(doc.Blocks, Block{Kind: Image, Path: path, Caption: Caption(n), Centered: true})
}
