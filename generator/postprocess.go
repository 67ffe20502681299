package generator

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	thinkRe   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRe   = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n(.*?)\n?```$")
	titleRe   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	htmlTagRe = regexp.MustCompile(`(?i)<(html|body|article|p|h[1-6]|div|ul|ol)[\s>]`)
)

// DigestLimit 是摘要的最大字符数。
const DigestLimit = 120

// PostProcess 清洗模型输出并补全 Draft 基础字段。
//
// 依次去掉推理块和包裹全文的代码围栏；HTML 稿件转换为 Markdown。
// 清洗后为空时返回 ErrGenerationFatal。
func PostProcess(raw string) (Draft, error) {
	md, err := Clean(raw)
	if err != nil {
		return Draft{}, err
	}
	if md == "" {
		return Draft{}, fmt.Errorf("%w: model returned empty markdown", ErrGenerationFatal)
	}

	digest := extractDigest(md)
	if digest == "" {
		digest = defaultDigest(md, DigestLimit)
	}

	return Draft{
		Title:    extractTitle(md),
		Digest:   digest,
		Markdown: md,
	}, nil
}

// Clean 返回去掉推理过程、围栏和 HTML 标记后的 Markdown 正文。
func Clean(raw string) (string, error) {
	md := thinkRe.ReplaceAllString(raw, "")
	// 只有结束标签时，之前的内容都是推理过程
	if i := strings.LastIndex(md, "</think>"); i >= 0 {
		md = md[i+len("</think>"):]
	}
	md = strings.TrimSpace(md)
	if m := fenceRe.FindStringSubmatch(md); m != nil {
		md = strings.TrimSpace(m[1])
	}
	if htmlTagRe.MatchString(md) {
		converted, err := htmlToMarkdown(md)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationFatal, err)
		}
		md = strings.TrimSpace(converted)
	}
	return md, nil
}

func htmlToMarkdown(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return string(markdownBytes), nil
}

func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// 摘要取首段（去掉标题行）。
func extractDigest(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return truncateRunes(line, DigestLimit)
	}
	return ""
}

func defaultDigest(md string, limit int) string {
	return truncateRunes(strings.Join(strings.Fields(md), " "), limit)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
