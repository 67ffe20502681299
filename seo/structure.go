package seo

import (
	"strings"
	"unicode/utf8"

	"auto_seo_article_generator/article"
)

// MaxParagraphLen 是段落（去掉首尾空白后）不需要拆分的最大字符数。
const MaxParagraphLen = 500

// Normalize 修正跳级的标题，并把过长的段落从中间句子处拆成两段。
func Normalize(text string) string {
	return splitLongParagraphs(normalizeHeadings(text))
}

// normalizeHeadings 逐行扫描；标题比上一个标题深两级或以上时，改为上一级 +1。
func normalizeHeadings(text string) string {
	lines := strings.Split(text, "\n")
	current := 0
	for i, line := range lines {
		level, _, ok := article.ParseHeading(line)
		if !ok {
			continue
		}
		if level-current > 1 {
			level = current + 1
			lines[i] = article.SetHeadingLevel(line, level)
		}
		current = level
	}
	return strings.Join(lines, "\n")
}

func splitLongParagraphs(text string) string {
	blocks := article.SplitBlocks(text)
	out := make([]string, 0, len(blocks))
	for _, p := range blocks {
		if article.Len(strings.TrimSpace(p)) > MaxParagraphLen {
			if first, second, ok := splitAtMiddleSentence(p); ok {
				out = append(out, first, second)
				continue
			}
		}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}

// splitAtMiddleSentence 只拆一次；句子数不足两句时不拆。
func splitAtMiddleSentence(p string) (string, string, bool) {
	sentences := splitSentences(strings.TrimSpace(p))
	if len(sentences) < 2 {
		return "", "", false
	}
	mid := len(sentences) / 2
	first := terminate(strings.TrimSpace(strings.Join(sentences[:mid], "")))
	second := terminate(strings.TrimSpace(strings.Join(sentences[mid:], "")))
	return first, second, true
}

// splitSentences 按句末标点切分，每句保留自己的标点；结尾没有标点的残句单独成句。
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(sentenceTerminators, r) {
			end := i + utf8.RuneLen(r)
			out = append(out, s[start:end])
			start = end
		}
	}
	if tail := s[start:]; strings.TrimSpace(tail) != "" {
		out = append(out, tail)
	}
	return out
}

func terminate(s string) string {
	r, _ := utf8.DecodeLastRuneInString(s)
	if s == "" || strings.ContainsRune(sentenceTerminators, r) {
		return s
	}
	return s + "。"
}
