package progress

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"auto_seo_article_generator/pipeline"
	"auto_seo_article_generator/publisher"
	"auto_seo_article_generator/seo"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModelTracksStages(t *testing.T) {
	m := New()
	m, _ = update(t, m, EventMsg{Stage: pipeline.StageIllustrate, Status: pipeline.StatusRunning, Progress: 0.5, Message: "正在生成配图"})

	assert.Equal(t, pipeline.StatusCompleted, m.status[pipeline.StageGenerate])
	assert.Equal(t, pipeline.StatusCompleted, m.status[pipeline.StageOptimize])
	assert.Equal(t, pipeline.StatusRunning, m.status[pipeline.StageIllustrate])
	assert.Empty(t, m.status[pipeline.StageWrite])

	view := m.View()
	assert.Contains(t, view, "生成配图")
	assert.Contains(t, view, " 50%")
	assert.Contains(t, view, "正在生成配图")
	assert.Contains(t, view, "按 q 退出")
}

func TestModelFailure(t *testing.T) {
	m := New()
	m, _ = update(t, m, EventMsg{Stage: pipeline.StageGenerate, Status: pipeline.StatusFailed, Message: "retries exhausted"})
	assert.Equal(t, pipeline.StatusFailed, m.status[pipeline.StageGenerate])
	assert.Contains(t, m.View(), "retries exhausted")
}

func TestModelCompletesAllStages(t *testing.T) {
	m := New()
	m, _ = update(t, m, EventMsg{Stage: pipeline.StageWrite, Status: pipeline.StatusCompleted, Progress: 1})
	for _, s := range pipeline.Stages {
		assert.Equal(t, pipeline.StatusCompleted, m.status[s], s)
	}
}

func TestModelQuitsOnDoneAndKey(t *testing.T) {
	m, cmd := update(t, New(), DoneMsg{Err: errors.New("x")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.done)
	assert.NotContains(t, m.View(), "按 q 退出")

	m, cmd = update(t, New(), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.interrupted)
}

func TestRunReturnsPipelineResult(t *testing.T) {
	fn := func(ctx context.Context, obs pipeline.Observer) (pipeline.Result, error) {
		obs.Observe(pipeline.Event{Stage: pipeline.StageGenerate, Status: pipeline.StatusRunning})
		return pipeline.Result{Title: "标题"}, nil
	}
	done := make(chan struct{})
	var res pipeline.Result
	var err error
	go func() {
		defer close(done)
		res, err = Run(context.Background(), fn, tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	require.NoError(t, err)
	assert.Equal(t, "标题", res.Title)
}

func TestRenderArticle(t *testing.T) {
	text := seo.Optimize("# 智能家居\n\n## 背景\n\n设备互联。\n\n#### 细节\n\n隐私保护。")
	out := RenderArticle(text, 60)
	assert.Contains(t, out, "智能家居")
	assert.Contains(t, out, "## 背景")
	assert.Contains(t, out, "#### 细节")
	assert.NotContains(t, out, seo.BeginMarker)
	if meta, ok := seo.Decode(text); ok && len(meta.Keywords) > 0 {
		assert.Contains(t, out, "关键词: "+meta.Keywords[0])
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(pipeline.Result{
		Files:    publisher.Files{DOCX: "output/article.docx", HTML: "output/article.html"},
		Images:   []string{"a.png"},
		Warnings: []string{"slot 1: image synthesis failed"},
		Duration: 1500 * time.Millisecond,
	})
	for _, want := range []string{"output/article.docx", "output/article.html", "配图 1 张", "1.5s", "slot 1"} {
		assert.True(t, strings.Contains(out, want), "missing %q in %q", want, out)
	}
}
