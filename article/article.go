// Package article 提供文章的块级解析：按空行切分段落，识别 Markdown 标题。
package article

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxHeadingLevel 是可识别的最深标题层级。
const MaxHeadingLevel = 6

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Kind 区分块类型。
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
)

// Block 是文章中的一个块（一段连续的非空行）：标题或段落。
type Block struct {
	Kind  Kind
	Level int // 仅标题有效，1..6
	Text  string
	// Body 是标题行之后、同一块内紧跟的正文，仅标题块可能非空。
	Body string
	Raw  string
}

// Stripped 返回去掉首尾空白的整块原文。
func (b Block) Stripped() string {
	return strings.TrimSpace(b.Raw)
}

// Article 是按顺序排列的块序列。
type Article struct {
	Blocks []Block
}

// Split 按空行切分文本，同时返回块之间的原始分隔符，便于 Join 原样还原。
// len(seps) == len(blocks)-1。
func Split(text string) (blocks []string, seps []string) {
	idx := blankLine.FindAllStringIndex(text, -1)
	last := 0
	for _, m := range idx {
		blocks = append(blocks, text[last:m[0]])
		seps = append(seps, text[m[0]:m[1]])
		last = m[1]
	}
	blocks = append(blocks, text[last:])
	return blocks, seps
}

// SplitBlocks 按空行切分文本，不保留分隔符。
func SplitBlocks(text string) []string {
	blocks, _ := Split(text)
	return blocks
}

// Join 是 Split 的逆操作。seps 不足时用 "\n\n" 补齐。
func Join(blocks, seps []string) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			if i-1 < len(seps) {
				b.WriteString(seps[i-1])
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(blk)
	}
	return b.String()
}

// ParseHeading 判断一行是否为标题（1~6 个 '#' 开头），返回层级与标题文本。
func ParseHeading(line string) (level int, text string, ok bool) {
	s := strings.TrimSpace(line)
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > MaxHeadingLevel {
		return 0, "", false
	}
	return n, strings.TrimSpace(s[n:]), true
}

// SetHeadingLevel 把标题行的 '#' 数量改为 level，保留缩进和标题后的原文。
// 非标题行原样返回。
func SetHeadingLevel(line string, level int) string {
	if _, _, ok := ParseHeading(line); !ok {
		return line
	}
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	rest := strings.TrimLeft(line[indent:], "#")
	return line[:indent] + strings.Repeat("#", level) + rest
}

// Parse 把文本解析为块序列。空白块会被跳过。
func Parse(text string) Article {
	var a Article
	for _, raw := range SplitBlocks(text) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		first, rest, _ := strings.Cut(trimmed, "\n")
		if level, heading, ok := ParseHeading(first); ok {
			// 标题后紧跟的正文仍属于同一块
			a.Blocks = append(a.Blocks, Block{Kind: KindHeading, Level: level, Text: heading, Body: strings.TrimSpace(rest), Raw: raw})
			continue
		}
		a.Blocks = append(a.Blocks, Block{Kind: KindParagraph, Text: trimmed, Raw: raw})
	}
	return a
}

// Len 返回字符数（按 rune 计）。
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate 截取前 n 个字符。
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
