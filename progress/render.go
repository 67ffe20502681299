package progress

import (
	"fmt"
	"strings"
	"time"

	"auto_seo_article_generator/article"
	"auto_seo_article_generator/pipeline"
	"auto_seo_article_generator/seo"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801")).
			Border(lipgloss.NormalBorder(), false, false, true, false).MarginBottom(1)
	headingStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FA7F5")),
	}
	minorHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
)

// RenderArticle 渲染文章预览：标题、关键词、各级标题和按宽度折行的段落。
func RenderArticle(text string, width int) string {
	width = max(20, width)
	meta, hasMeta := seo.Decode(text)
	title, hasTitle, blocks := seo.Body(text)

	var parts []string
	if hasTitle {
		parts = append(parts, titleStyle.Render(title))
	}
	if hasMeta && len(meta.Keywords) > 0 {
		parts = append(parts, metaStyle.Render("关键词: "+strings.Join(meta.Keywords, ", ")))
	}
	body := lipgloss.NewStyle().Width(width)
	for _, blk := range blocks {
		if blk.Kind == article.KindHeading {
			style, ok := headingStyles[blk.Level]
			if !ok {
				style = minorHeading
			}
			parts = append(parts, style.Render(strings.Repeat("#", blk.Level)+" "+blk.Text))
			if blk.Body != "" {
				parts = append(parts, body.Render(blk.Body))
			}
			continue
		}
		parts = append(parts, body.Render(blk.Text))
	}
	return strings.Join(parts, "\n\n")
}

// RenderSummary 列出输出文件和警告。
func RenderSummary(res pipeline.Result) string {
	lines := []string{doneStyle.Render("文章已保存到: " + res.Files.DOCX)}
	if res.Files.HTML != "" {
		lines = append(lines, metaStyle.Render("HTML 预览: "+res.Files.HTML))
	}
	lines = append(lines, metaStyle.Render(fmt.Sprintf("配图 %d 张，用时 %s", len(res.Images), res.Duration.Round(time.Millisecond))))
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("! "+w))
	}
	return strings.Join(lines, "\n")
}
