package generator

import (
	"fmt"
	"strings"
)

// SystemPrompt 设定模型角色。
const SystemPrompt = "你是一个专业的SEO文章写手，擅长创作优质的SEO文章。"

// seoRules 是每篇文章都附带的写作约束。
var seoRules = []string{
	"符合SEO优化标准",
	"段落结构清晰",
	"适合配图的内容布局",
	"关键词密度保持在2%-3%",
	"标题和段落层次分明",
}

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// BuildPrompt 生成文章提示词。
func BuildPrompt(spec Spec) Prompt {
	var sb strings.Builder
	sb.WriteString("请生成一篇符合以下要求的SEO文章：\n")
	sb.WriteString(fmt.Sprintf("要求：%s\n", strings.TrimSpace(spec.Requirements)))
	if spec.Words > 0 {
		sb.WriteString(fmt.Sprintf("字数：%d\n", spec.Words))
	}
	sb.WriteString("要求：\n")
	for i, rule := range seoRules {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rule))
	}
	sb.WriteString("请使用 Markdown 输出，以一级标题作为文章标题，段落之间空一行。\n")

	return Prompt{
		System: SystemPrompt,
		User:   sb.String(),
	}
}
