// Package config 读取 YAML 配置文件，缺失时写出默认模板。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auto_seo_article_generator/generator"
	"auto_seo_article_generator/illustrate"

	"gopkg.in/yaml.v3"
)

// ErrConfigInvalid 表示配置缺少必填项或取值非法。
var ErrConfigInvalid = errors.New("config: invalid")

// DefaultPath 是默认配置文件位置。
const DefaultPath = "config/config.yaml"

// Config 是应用配置。
type Config struct {
	DeepSeekAPIKey string          `yaml:"deepseek_api_key"`
	FluxAPIKey     string          `yaml:"flux_api_key"`
	OutputDir      string          `yaml:"output_dir"`
	LogDir         string          `yaml:"log_dir"`
	ServerAddr     string          `yaml:"server_addr,omitempty"`
	LLM            LLMConfig       `yaml:"llm"`
	Image          ImageConfig     `yaml:"image"`
	Watermark      WatermarkConfig `yaml:"watermark"`
}

// LLMConfig 是文章生成模型的配置。
type LLMConfig struct {
	Provider    string        `yaml:"provider,omitempty"`
	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	MaxTokens   int           `yaml:"max_tokens,omitempty"`
	Temperature *float64      `yaml:"temperature,omitempty"`
	MaxRetries  int           `yaml:"max_retries,omitempty"`
	RetryDelay  time.Duration `yaml:"retry_delay,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// ImageConfig 是配图生成的配置。
type ImageConfig struct {
	Provider       string        `yaml:"provider,omitempty"`
	Endpoint       string        `yaml:"endpoint,omitempty"`
	Model          string        `yaml:"model,omitempty"`
	ImageSize      string        `yaml:"image_size,omitempty"`
	InferenceSteps int           `yaml:"inference_steps,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	Concurrency    int           `yaml:"concurrency,omitempty"`
}

// WatermarkConfig 是水印的默认值，命令行参数可以覆盖。
type WatermarkConfig struct {
	Text     string `yaml:"text"`
	Position string `yaml:"position,omitempty"`
	FontPath string `yaml:"font_path,omitempty"`
}

// Default 返回默认配置（API key 为空）。
func Default() Config {
	return Config{
		OutputDir: "output",
		LogDir:    "logs",
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       generator.DefaultModel,
			BaseURL:     generator.DefaultBaseURL,
			MaxTokens:   generator.DefaultMaxTokens,
			Temperature: ptr(generator.DefaultTemperature),
			MaxRetries:  generator.DefaultAttempts,
			RetryDelay:  generator.DefaultRetryDelay,
			Timeout:     120 * time.Second,
		},
		Image: ImageConfig{
			Provider:    "siliconflow",
			Concurrency: 3,
			Timeout:     120 * time.Second,
		},
		Watermark: WatermarkConfig{
			Text:     "版权所有",
			Position: string(illustrate.BottomRight),
		},
	}
}

const defaultHeader = `# 自动 SEO 文章生成配置
# deepseek_api_key 与 flux_api_key 必填；llm.provider / image.provider 设为 mock / placeholder 可离线运行。
`

// Load 读取配置；文件不存在时写出默认模板后再校验，因此首次运行会因 key 为空而失败。
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return Config{}, err
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解码 YAML，未出现的字段取默认值，并校验。
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteDefault 写出默认配置模板。
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: encode default: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate 检查必填项。
func (c Config) Validate() error {
	var missing []string
	if c.LLM.Provider != "mock" && strings.TrimSpace(c.DeepSeekAPIKey) == "" {
		missing = append(missing, "deepseek_api_key")
	}
	if c.Image.Provider != "placeholder" && strings.TrimSpace(c.FluxAPIKey) == "" {
		missing = append(missing, "flux_api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must not be empty", ErrConfigInvalid, strings.Join(missing, ", "))
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrConfigInvalid)
	}
	if _, err := illustrate.ParsePosition(c.Watermark.Position); err != nil {
		return fmt.Errorf("%w: watermark.position: %v", ErrConfigInvalid, err)
	}
	if c.LLM.MaxRetries < 0 || c.Image.Concurrency < 0 {
		return fmt.Errorf("%w: max_retries and concurrency must not be negative", ErrConfigInvalid)
	}
	if t := c.LLM.Temperature; t != nil && *t < 0 {
		return fmt.Errorf("%w: llm.temperature must not be negative", ErrConfigInvalid)
	}
	return nil
}

// LLMSettings 转换为生成模块的配置。
func (c Config) LLMSettings() generator.LLMSettings {
	return generator.LLMSettings{
		Provider:    c.LLM.Provider,
		Model:       c.LLM.Model,
		APIKey:      c.DeepSeekAPIKey,
		BaseURL:     c.LLM.BaseURL,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout,
	}
}

// RetryPolicy 返回生成环节的重试策略。
func (c Config) RetryPolicy() generator.RetryPolicy {
	return generator.RetryPolicy{Attempts: c.LLM.MaxRetries, Delay: c.LLM.RetryDelay}
}

// ImageSettings 转换为 SiliconFlow 客户端配置。
func (c Config) ImageSettings() illustrate.SiliconFlowSettings {
	return illustrate.SiliconFlowSettings{
		Endpoint:       c.Image.Endpoint,
		APIKey:         c.FluxAPIKey,
		Model:          c.Image.Model,
		ImageSize:      c.Image.ImageSize,
		InferenceSteps: c.Image.InferenceSteps,
		Timeout:        c.Image.Timeout,
	}
}

// ImageSource 按 image.provider 构造图片来源。
func (c Config) ImageSource() (illustrate.Source, error) {
	if c.Image.Provider == "placeholder" {
		return illustrate.Placeholder{Width: 1024, Height: 1024}, nil
	}
	return illustrate.NewSiliconFlow(c.ImageSettings(), nil)
}

func ptr[T any](v T) *T { return &v }
