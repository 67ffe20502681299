package seo

import (
	"html"
	"regexp"
	"strings"

	"auto_seo_article_generator/article"
)

// 元信息块的首尾标记。
const (
	BeginMarker = "<!--SEO Meta Tags-->"
	EndMarker   = "<!--End SEO Meta Tags-->"
)

// DefaultTitle 在文章没有一级标题时使用。
const DefaultTitle = "SEO优化文章"

// MaxDescriptionLen 是描述的最大字符数。
const MaxDescriptionLen = 200

var (
	titleLineRe    = regexp.MustCompile(`<title>(.*)</title>`)
	descLineRe     = regexp.MustCompile(`<meta name="description" content="(.*)">`)
	keywordsLineRe = regexp.MustCompile(`<meta name="keywords" content="(.*)">`)
)

// Metadata 是写在文章开头的 SEO 元信息。
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Derive 从文本中提取标题、描述和关键词。
func Derive(text string) Metadata {
	m := Metadata{Title: DefaultTitle}
	for _, line := range strings.Split(text, "\n") {
		if level, t, ok := article.ParseHeading(line); ok && level == 1 && t != "" {
			m.Title = t
			break
		}
	}
	for _, blk := range article.Parse(text).Blocks {
		if blk.Kind == article.KindParagraph {
			m.Description = article.Truncate(strings.Join(strings.Fields(blk.Text), " "), MaxDescriptionLen)
			break
		}
	}
	if m.Description == "" {
		m.Description = article.Truncate(m.Title, MaxDescriptionLen)
	}
	m.Keywords = Analyze(text).Keywords(MaxKeywords)
	return m
}

// Encode 序列化为元信息块，末尾带一个空行。
func (m Metadata) Encode() string {
	lines := []string{
		BeginMarker,
		"<title>" + html.EscapeString(m.Title) + "</title>",
		`<meta name="description" content="` + html.EscapeString(m.Description) + `">`,
		`<meta name="keywords" content="` + html.EscapeString(strings.Join(m.Keywords, ", ")) + `">`,
		EndMarker,
		"",
		"",
	}
	return strings.Join(lines, "\n")
}

// Embed 在文本前加上根据当前内容生成的元信息块，正文原样保留。
func Embed(text string) string {
	return Derive(text).Encode() + text
}

// Extract 删除元信息块（首个开始标记到其后首个结束标记，以及紧随的空行）。
// 标记缺失或不成对时原样返回。
//
// 标记按首次出现匹配，不做嵌套配对；正文里如果恰好出现标记字符串也会被当作边界。
func Extract(text string) string {
	lines := strings.Split(text, "\n")
	begin, end, ok := locate(lines)
	if !ok {
		return text
	}
	rest := lines[end+1:]
	if len(rest) > 0 && rest[0] == "" {
		rest = rest[1:]
	}
	return strings.Join(append(lines[:begin:begin], rest...), "\n")
}

// Decode 解析文本中的元信息块。
func Decode(text string) (Metadata, bool) {
	lines := strings.Split(text, "\n")
	begin, end, ok := locate(lines)
	if !ok {
		return Metadata{}, false
	}
	var m Metadata
	for _, line := range lines[begin+1 : end] {
		if g := titleLineRe.FindStringSubmatch(line); g != nil {
			m.Title = html.UnescapeString(g[1])
		} else if g := descLineRe.FindStringSubmatch(line); g != nil {
			m.Description = html.UnescapeString(g[1])
		} else if g := keywordsLineRe.FindStringSubmatch(line); g != nil {
			for _, kw := range strings.Split(html.UnescapeString(g[1]), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					m.Keywords = append(m.Keywords, kw)
				}
			}
		}
	}
	return m, true
}

func locate(lines []string) (begin, end int, ok bool) {
	begin = -1
	for i, line := range lines {
		if strings.Contains(line, BeginMarker) {
			begin = i
			break
		}
	}
	if begin < 0 {
		return 0, 0, false
	}
	for i := begin + 1; i < len(lines); i++ {
		if strings.Contains(lines[i], EndMarker) {
			return begin, i, true
		}
	}
	return 0, 0, false
}
