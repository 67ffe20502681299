// Package seo 实现关键词密度调整、结构规范化以及 SEO 元信息块的写入与剥离。
//
// 所有函数都是纯函数：对任意输入（包括空字符串）返回字符串，不 panic，
// 也不持有跨调用的状态，可在多个 goroutine 中并发使用。
package seo

import (
	"regexp"
	"sort"

	"auto_seo_article_generator/article"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxKeywords 是每次分析选出的候选关键词上限。
const MaxKeywords = 5

var wordRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]+`)

// Profile 是一次分析得到的词频统计。
type Profile struct {
	Counts map[string]int
	Total  int
	order  []string // 首次出现顺序
}

// KeywordDensity 描述一个关键词的出现次数与密度（百分比）。
type KeywordDensity struct {
	Keyword string  `json:"keyword"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// lower 做与语言无关的小写转换。Caser 有状态，每次调用单独创建。
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Analyze 统计文本的词频。分词按 Unicode 单词字符进行，不区分大小写。
func Analyze(text string) Profile {
	p := Profile{Counts: make(map[string]int)}
	for _, tok := range wordRe.FindAllString(lower(text), -1) {
		if _, seen := p.Counts[tok]; !seen {
			p.order = append(p.order, tok)
		}
		p.Counts[tok]++
		p.Total++
	}
	return p
}

// Keywords 返回出现次数最多的 n 个关键词。单字符词不参与选择；
// 次数相同时按首次出现顺序排列。
func (p Profile) Keywords(n int) []string {
	candidates := make([]string, 0, len(p.order))
	for _, tok := range p.order {
		if article.Len(tok) > 1 {
			candidates = append(candidates, tok)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return p.Counts[candidates[i]] > p.Counts[candidates[j]]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// Density 返回关键词密度（百分比）。空文本密度为 0。
func (p Profile) Density(keyword string) float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Counts[keyword]) / float64(p.Total) * 100
}

// Densities 返回文本中前 n 个关键词的密度。
func Densities(text string, n int) []KeywordDensity {
	p := Analyze(text)
	var out []KeywordDensity
	for _, kw := range p.Keywords(n) {
		out = append(out, KeywordDensity{Keyword: kw, Count: p.Counts[kw], Density: p.Density(kw)})
	}
	return out
}
