package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 输出固定结构的示例文章，段落足够长，能触发配图。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	topic := "人工智能在日常生活中的应用"
	for _, line := range strings.Split(prompt.User, "\n") {
		if rest, ok := strings.CutPrefix(line, "要求："); ok && strings.TrimSpace(rest) != "" {
			topic = strings.TrimSpace(rest)
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("<think>离线示例，不调用模型。</think>\n")
	sb.WriteString(fmt.Sprintf("# %s\n\n", topic))
	sb.WriteString(fmt.Sprintf("本文围绕“%s”展开，介绍背景、现状和未来趋势。", topic))
	sb.WriteString(strings.Repeat("人工智能正在改变我们的工作方式和生活习惯。", 4))
	sb.WriteString("\n\n## 背景\n\n")
	sb.WriteString(strings.Repeat("从语音助手到智能家居，技术的普及让普通家庭也能感受到变化。", 3))
	sb.WriteString("\n\n## 现状\n\n")
	sb.WriteString(strings.Repeat("医疗、交通和教育领域都出现了大量落地案例，应用场景不断丰富。", 3))
	sb.WriteString("\n\n### 挑战\n\n")
	sb.WriteString("数据安全与隐私保护仍然是需要持续关注的问题。")
	sb.WriteString("\n\n## 展望\n\n")
	sb.WriteString(strings.Repeat("未来的系统会更加个性化，也更加注重可解释性与公平性。", 3))
	sb.WriteString("\n")
	return sb.String(), nil
}
