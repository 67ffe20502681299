package publisher

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"auto_seo_article_generator/document"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	headingRe = regexp.MustCompile(`(?s)<h([2-6])[^>]*>(.*?)</h[2-6]>`)
	figureRe  = regexp.MustCompile(`<p><img src="([^"]*)" alt="([^"]*)"\s*/?></p>`)
)

// 与 docx 样式一致的字号，h2~h4 对应正文 1~3 级标题。
var headingSizes = map[string]string{
	"2": "18pt",
	"3": "16pt",
	"4": "14pt",
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
%s</head>
<body style="font-family:'微软雅黑','Microsoft YaHei',sans-serif;max-width:800px;margin:0 auto;line-height:1.7;">
%s%s</body>
</html>
`

// toMarkdown 把文档块还原成 Markdown；文档标题单独渲染。
func toMarkdown(doc document.Document, baseDir string) string {
	var b strings.Builder
	for _, blk := range doc.Blocks {
		switch blk.Kind {
		case document.Heading:
			b.WriteString(strings.Repeat("#", min(max(blk.Level, 1), document.MaxHeadingLevel)+1))
			b.WriteString(" ")
			b.WriteString(blk.Text)
		case document.Paragraph:
			b.WriteString(blk.Text)
		case document.Image:
			src := blk.Path
			if rel, err := filepath.Rel(baseDir, blk.Path); err == nil {
				src = rel
			}
			fmt.Fprintf(&b, "![%s](<%s>)", blk.Caption, filepath.ToSlash(src))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func mdToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// styleHeadings 给正文标题加上与 docx 一致的内联字号。
func styleHeadings(page string) string {
	return headingRe.ReplaceAllStringFunc(page, func(block string) string {
		parts := headingRe.FindStringSubmatch(block)
		size := headingSizes[parts[1]]
		if size == "" {
			size = "14pt"
		}
		return fmt.Sprintf(`<h%s style="font-size:%s;font-weight:700;color:#000;">%s</h%s>`, parts[1], size, strings.TrimSpace(parts[2]), parts[1])
	})
}

// wrapFigures 把独占一段的图片换成居中的 figure，alt 作为图注。
func wrapFigures(page string) string {
	return figureRe.ReplaceAllString(page,
		`<figure style="text-align:center;margin:1.5em 0;"><img src="$1" alt="$2" style="max-width:100%;">`+
			`<figcaption style="font-size:10pt;font-style:italic;color:#595959;">$2</figcaption></figure>`)
}

func renderHTML(doc document.Document, baseDir string) ([]byte, error) {
	body, err := mdToHTML(toMarkdown(doc, baseDir))
	if err != nil {
		return nil, fmt.Errorf("publisher: render html: %w", err)
	}
	body = wrapFigures(styleHeadings(body))

	title := ""
	if doc.Title != "" {
		title = `<h1 style="text-align:center;font-size:22pt;">` + html.EscapeString(doc.Title) + "</h1>\n"
	}
	meta := doc.Metadata
	if meta.Title == "" {
		meta.Title = doc.Title
	}
	return []byte(fmt.Sprintf(pageTemplate, meta.Encode(), title, body)), nil
}
