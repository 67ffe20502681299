package seo

import (
	"strings"
	"unicode/utf8"

	"auto_seo_article_generator/article"
)

// 关键词密度目标区间（百分比）。
const (
	LowDensity  = 2.0
	HighDensity = 3.0
)

// sentenceTerminators 是中文句末标点。
const sentenceTerminators = "。！？"

// synonyms 用于降低过高的关键词密度，按顺序轮换使用。
var synonyms = map[string][]string{
	"技术": {"科技", "工艺", "方法"},
	"智能": {"智慧", "聪明", "智囊"},
	"系统": {"平台", "框架", "体系"},
	"开发": {"研发", "创建", "构建"},
	"应用": {"使用", "运用", "实施"},
}

// Synonyms 返回关键词的同义词列表副本。
func Synonyms(keyword string) []string {
	return append([]string(nil), synonyms[keyword]...)
}

// Balance 把关键词密度调整到 2%~3% 附近。
//
// 只做一轮：每个候选词按原文密度调整一次，调整后不重新计算。
func Balance(text string) string {
	p := Analyze(text)
	if p.Total == 0 {
		return text
	}
	for _, kw := range p.Keywords(MaxKeywords) {
		switch d := p.Density(kw); {
		case d < LowDensity:
			text = addKeyword(text, kw)
		case d > HighDensity:
			text = reduceKeyword(text, kw)
		}
	}
	return text
}

// addKeyword 在每隔两段（下标 %3 == 0）且未包含该词的段落中，
// 于第一个句末标点之后插入一个引出关键词的短语。
func addKeyword(text, keyword string) string {
	blocks, seps := article.Split(text)
	for i, blk := range blocks {
		if i%3 != 0 || strings.Contains(lower(blk), keyword) {
			continue
		}
		pos := strings.IndexAny(blk, sentenceTerminators)
		if pos < 0 {
			continue
		}
		_, size := utf8.DecodeRuneInString(blk[pos:])
		cut := pos + size
		blocks[i] = blk[:cut] + "关于" + keyword + "，" + blk[cut:]
	}
	return article.Join(blocks, seps)
}

// reduceKeyword 把前 count/3 处关键词替换为轮换的同义词，count 为该词作为独立词出现的次数，
// 只替换完整的词，不改动包含它的更长的词。没有同义词的词保持不变。
func reduceKeyword(text, keyword string) string {
	syns, ok := synonyms[keyword]
	if !ok || len(syns) == 0 {
		return text
	}
	budget := Analyze(text).Counts[keyword] / 3
	if budget == 0 {
		return text
	}
	var b strings.Builder
	last, n := 0, 0
	for _, m := range wordRe.FindAllStringIndex(text, -1) {
		if n == budget {
			break
		}
		if lower(text[m[0]:m[1]]) != keyword {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(syns[n%len(syns)])
		last = m[1]
		n++
	}
	b.WriteString(text[last:])
	return b.String()
}
