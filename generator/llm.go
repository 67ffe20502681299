package generator

import (
	"context"
	"time"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	// Temperature 为 nil 时使用 DefaultTemperature，0 是合法取值。
	Temperature *float64
	// Timeout 是单次请求的超时，0 表示不限制。
	Timeout time.Duration
}

// 默认使用 ppinfra 提供的 DeepSeek R1。
const (
	DefaultBaseURL     = "https://api.ppinfra.com/v3/openai"
	DefaultModel       = "deepseek/deepseek-r1/community"
	DefaultMaxTokens   = 10240
	DefaultTemperature = 1.0
)

// NewLLM 按 provider 构造客户端；"mock" 返回离线示例实现。
func NewLLM(cfg LLMSettings) (LLMClient, error) {
	switch cfg.Provider {
	case "mock":
		return MockLLM{}, nil
	default:
		return NewOpenAILLMFromConfig(&cfg)
	}
}
