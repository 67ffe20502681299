// Package progress 在终端中显示流水线进度并预览生成的文章。
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auto_seo_article_generator/pipeline"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInterrupted 表示用户在界面中主动退出。
var ErrInterrupted = errors.New("progress: interrupted")

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageGenerate:   "生成文章",
	pipeline.StageOptimize:   "SEO 优化",
	pipeline.StageIllustrate: "生成配图",
	pipeline.StageSave:       "保存图片",
	pipeline.StageAssemble:   "组装文档",
	pipeline.StageWrite:      "写出文档",
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	waitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)

// EventMsg 把流水线事件送入界面。
type EventMsg pipeline.Event

// DoneMsg 表示流水线结束。
type DoneMsg struct {
	Result pipeline.Result
	Err    error
}

// Model 是进度界面的 bubbletea 模型。
type Model struct {
	spinner     spinner.Model
	status      map[pipeline.Stage]pipeline.Status
	last        pipeline.Event
	done        bool
	interrupted bool
	result      pipeline.Result
	err         error
}

func New() Model {
	return Model{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(runningStyle)),
		status:  make(map[pipeline.Stage]pipeline.Status),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	case EventMsg:
		m.apply(pipeline.Event(msg))
	case DoneMsg:
		m.done, m.result, m.err = true, msg.Result, msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply 更新阶段状态；某阶段开始意味着之前的阶段都已完成。
func (m *Model) apply(e pipeline.Event) {
	m.last = e
	if e.Status == pipeline.StatusRunning {
		for _, s := range pipeline.Stages {
			if s == e.Stage {
				break
			}
			m.status[s] = pipeline.StatusCompleted
		}
	}
	if e.Status == pipeline.StatusCompleted && e.Progress >= 1 {
		for _, s := range pipeline.Stages {
			m.status[s] = pipeline.StatusCompleted
		}
		return
	}
	m.status[e.Stage] = e.Status
}

func (m Model) View() string {
	var b strings.Builder
	for _, s := range pipeline.Stages {
		label := stageLabels[s]
		switch m.status[s] {
		case pipeline.StatusCompleted:
			b.WriteString(doneStyle.Render("✓ " + label))
		case pipeline.StatusFailed:
			b.WriteString(failStyle.Render("✗ " + label))
		case pipeline.StatusRunning:
			b.WriteString(m.spinner.View() + runningStyle.Render(label))
		default:
			b.WriteString(waitStyle.Render("· " + label))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%3.0f%%  %s\n", m.last.Progress*100, m.last.Message)
	if !m.done {
		b.WriteString(hintStyle.Render("按 q 退出") + "\n")
	}
	return b.String()
}

// programObserver 把事件转发给运行中的界面。
type programObserver struct {
	p *tea.Program
}

func (o programObserver) Observe(e pipeline.Event) {
	o.p.Send(EventMsg(e))
}

// RunFunc 执行一次流水线。
type RunFunc func(ctx context.Context, obs pipeline.Observer) (pipeline.Result, error)

// Run 在终端界面中执行 fn。用户退出时取消 ctx 并返回 ErrInterrupted。
func Run(ctx context.Context, fn RunFunc, opts ...tea.ProgramOption) (pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(), opts...)
	finished := make(chan DoneMsg, 1)
	go func() {
		res, err := fn(ctx, programObserver{p: p})
		finished <- DoneMsg{Result: res, Err: err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-finished
		return pipeline.Result{}, fmt.Errorf("progress: %w", err)
	}
	if m, ok := final.(Model); ok && m.interrupted {
		cancel()
		<-finished
		return pipeline.Result{}, ErrInterrupted
	}
	done := <-finished
	return done.Result, done.Err
}
