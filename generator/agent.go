package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// 默认最多尝试 5 次，第 n 次失败后等待 n×3 秒。
const (
	DefaultAttempts   = 5
	DefaultRetryDelay = 3 * time.Second
)

// RetryPolicy 控制生成失败后的重试。
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Agent 负责根据 Spec 调用模型生成稿件，是唯一带重试的环节。
type Agent struct {
	llm    LLMClient
	policy RetryPolicy
	logger *zap.Logger
}

func NewAgent(llm LLMClient, policy RetryPolicy, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, policy: policy, logger: logger}, nil
}

// Generate 返回清洗后的 Markdown 文章。
func (a *Agent) Generate(ctx context.Context, requirements string, wordCount int) (string, error) {
	draft, err := a.GenerateDraft(ctx, Spec{Requirements: requirements, Words: wordCount})
	if err != nil {
		return "", err
	}
	return draft.Markdown, nil
}

// GenerateDraft 调用模型并做后处理。
//
// 可重试的失败按线性递增的间隔重试；重试用尽返回 ErrGenerationExhausted，
// 其余失败立即以 ErrGenerationFatal 返回。ctx 结束时返回 ctx 的错误。
func (a *Agent) GenerateDraft(ctx context.Context, spec Spec) (Draft, error) {
	prompt := BuildPrompt(spec)
	var draft Draft
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			a.logger.Info("generating article", zap.Int("attempt", attempt), zap.Int("words", spec.Words))
			raw, err := a.llm.Complete(ctx, prompt)
			if err != nil {
				return err
			}
			draft, err = PostProcess(raw)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(a.policy.Attempts)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return a.policy.Delay * time.Duration(n+1)
		}),
		retry.RetryIf(func(err error) bool { return Transient(ctx, err) }),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("article generation failed, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		a.logger.Info("article generated", zap.String("title", draft.Title), zap.Int("attempts", attempt))
		return draft, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Draft{}, ctxErr
	}
	if errors.Is(err, ErrGenerationFatal) || !Transient(ctx, err) {
		a.logger.Error("article generation failed", zap.Error(err))
		if errors.Is(err, ErrGenerationFatal) {
			return Draft{}, err
		}
		return Draft{}, fmt.Errorf("%w: %v", ErrGenerationFatal, err)
	}
	a.logger.Error("article generation exhausted", zap.Int("attempts", attempt), zap.Error(err))
	return Draft{}, fmt.Errorf("%w after %d attempts: %v", ErrGenerationExhausted, attempt, err)
}
