package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	openai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM 依次返回预设结果，用完后重复最后一个。
type scriptedLLM struct {
	mu      sync.Mutex
	replies []reply
	calls   int
	prompts []Prompt
}

type reply struct {
	text string
	err  error
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.replies[min(s.calls, len(s.replies)-1)]
	s.calls++
	s.prompts = append(s.prompts, p)
	return r.text, r.err
}

func newTestAgent(t *testing.T, llm LLMClient, attempts int) *Agent {
	t.Helper()
	a, err := NewAgent(llm, RetryPolicy{Attempts: attempts}, nil)
	require.NoError(t, err)
	return a
}

var transient = fmt.Errorf("%w: timeout", ErrGenerationTransient)

func TestGenerateSucceedsAfterTransientFailures(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{err: transient}, {err: transient}, {text: "# 标题\n\n正文"}}}
	out, err := newTestAgent(t, llm, 5).Generate(context.Background(), "写AI", 800)
	require.NoError(t, err)
	assert.Equal(t, "# 标题\n\n正文", out)
	assert.Equal(t, 3, llm.calls)
}

func TestGenerateExhausted(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{err: transient}}}
	_, err := newTestAgent(t, llm, 3).Generate(context.Background(), "x", 100)
	assert.ErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, 3, llm.calls)
}

func TestGenerateFatalStopsImmediately(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{err: errors.New("invalid api key")}}}
	_, err := newTestAgent(t, llm, 5).Generate(context.Background(), "x", 100)
	assert.ErrorIs(t, err, ErrGenerationFatal)
	assert.NotErrorIs(t, err, ErrGenerationExhausted)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerateEmptyOutputIsFatal(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{text: "<think>只有推理</think>\n  "}}}
	_, err := newTestAgent(t, llm, 5).Generate(context.Background(), "x", 100)
	assert.ErrorIs(t, err, ErrGenerationFatal)
	assert.Equal(t, 1, llm.calls)
}

func TestGenerateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	llm := &scriptedLLM{replies: []reply{{err: transient}}}
	_, err := newTestAgent(t, llm, 5).Generate(ctx, "x", 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateWithMock(t *testing.T) {
	out, err := newTestAgent(t, MockLLM{}, 1).Generate(context.Background(), "智能家居", 500)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# 智能家居\n\n"))
	assert.NotContains(t, out, "<think>")
}

func TestPromptCarriesRequirements(t *testing.T) {
	llm := &scriptedLLM{replies: []reply{{text: "# T"}}}
	_, err := newTestAgent(t, llm, 1).Generate(context.Background(), "写一篇关于咖啡的文章", 1200)
	require.NoError(t, err)
	require.Len(t, llm.prompts, 1)
	p := llm.prompts[0]
	assert.Equal(t, SystemPrompt, p.System)
	assert.Contains(t, p.User, "要求：写一篇关于咖啡的文章\n")
	assert.Contains(t, p.User, "字数：1200\n")
	assert.Contains(t, p.User, "4. 关键词密度保持在2%-3%\n")
}

func TestNewAgentRequiresLLM(t *testing.T) {
	_, err := NewAgent(nil, RetryPolicy{}, nil)
	assert.Error(t, err)
}

func TestTransient(t *testing.T) {
	ctx := context.Background()
	canceled, cancel := context.WithCancel(ctx)
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"sentinel", ctx, transient, true},
		{"fatal", ctx, ErrGenerationFatal, false},
		{"rate limited", ctx, &openai.Error{StatusCode: 429}, true},
		{"server error", ctx, &openai.Error{StatusCode: 502}, true},
		{"bad request", ctx, &openai.Error{StatusCode: 400}, false},
		{"unauthorized", ctx, &openai.Error{StatusCode: 401}, false},
		{"request timeout", ctx, fmt.Errorf("post: %w", context.DeadlineExceeded), true},
		{"connection refused", ctx, &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"plain", ctx, errors.New("boom"), false},
		{"parent done", canceled, transient, false},
		{"nil", ctx, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Transient(tc.ctx, tc.err))
		})
	}
}
