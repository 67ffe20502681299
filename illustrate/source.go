package illustrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultEndpoint  = "https://api.siliconflow.cn/v1/images/generations"
	defaultModel     = "black-forest-labs/FLUX.1-dev"
	defaultImageSize = "1024x1024"
	defaultSteps     = 10
)

// ErrImageSynthesis 表示图片生成或下载失败。
var ErrImageSynthesis = errors.New("image synthesis failed")

// Source 根据提示词返回原始图片字节。
type Source interface {
	Synthesize(ctx context.Context, prompt string) ([]byte, error)
}

// SiliconFlowSettings 是 SiliconFlow 图片生成接口的配置。
type SiliconFlowSettings struct {
	Endpoint       string
	APIKey         string
	Model          string
	ImageSize      string
	InferenceSteps int
	Timeout        time.Duration
}

// SiliconFlow 调用 SiliconFlow（FLUX）生成图片，再下载返回的图片 URL。
type SiliconFlow struct {
	cfg    SiliconFlowSettings
	client *http.Client
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	ImageSize      string `json:"image_size"`
	InferenceSteps int    `json:"num_inference_steps"`
}

type imageRef struct {
	URL string `json:"url"`
}

type generationResponse struct {
	Data   []imageRef `json:"data"`
	Images []imageRef `json:"images"`
}

// NewSiliconFlow 创建图片生成客户端。client 为 nil 时按 Timeout 新建。
func NewSiliconFlow(cfg SiliconFlowSettings, client *http.Client) (*SiliconFlow, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("flux api key missing; provide flux_api_key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = defaultImageSize
	}
	if cfg.InferenceSteps <= 0 {
		cfg.InferenceSteps = defaultSteps
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &SiliconFlow{cfg: cfg, client: client}, nil
}

// Synthesize 生成一张图片。没有返回图片 URL 或下载失败时返回 ErrImageSynthesis。
func (s *SiliconFlow) Synthesize(ctx context.Context, prompt string) ([]byte, error) {
	url, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSynthesis, err)
	}
	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSynthesis, err)
	}
	return data, nil
}

func (s *SiliconFlow) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generationRequest{
		Model:          s.cfg.Model,
		Prompt:         prompt,
		ImageSize:      s.cfg.ImageSize,
		InferenceSteps: s.cfg.InferenceSteps,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var data generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	for _, refs := range [][]imageRef{data.Data, data.Images} {
		if len(refs) > 0 && refs[0].URL != "" {
			return refs[0].URL, nil
		}
	}
	return "", errors.New("no image url in response")
}

func (s *SiliconFlow) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
