// Package illustrate 负责配图：挑选需要配图的段落、调用图片生成服务、叠加水印。
package illustrate

import (
	"auto_seo_article_generator/article"
	"auto_seo_article_generator/seo"
)

const (
	// MaxSlots 是每篇文章最多生成的配图数量。
	MaxSlots = 3
	// MinSourceLen 是段落成为配图来源所需的最小长度（不含）。
	MinSourceLen = 100
	// MaxPromptLen 是提示词的最大字符数。
	MaxPromptLen = 200
)

// Slot 是一个待生成的配图位置。Index 为来源段落在正文块中的下标。
type Slot struct {
	Prompt string `json:"prompt"`
	Index  int    `json:"index"`
}

// Select 每隔一个正文块（下标 0, 2, 4…）取去掉首尾空白后长度超过 100 字的块，
// 以其前 200 字作为提示词，最多 3 个，保持原文顺序。
func Select(text string) []Slot {
	_, _, blocks := seo.Body(text)
	var slots []Slot
	for i := 0; i < len(blocks) && len(slots) < MaxSlots; i += 2 {
		src := blocks[i].Stripped()
		if article.Len(src) <= MinSourceLen {
			continue
		}
		slots = append(slots, Slot{Prompt: article.Truncate(src, MaxPromptLen), Index: i})
	}
	return slots
}
