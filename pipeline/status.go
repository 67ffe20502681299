package pipeline

import "sync"

// Status 是任务或阶段的状态。
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stage 是流水线中的一个阶段。
type Stage string

const (
	StageGenerate   Stage = "generate"
	StageOptimize   Stage = "optimize"
	StageIllustrate Stage = "illustrate"
	StageSave       Stage = "save"
	StageAssemble   Stage = "assemble"
	StageWrite      Stage = "write"
)

// Stages 按执行顺序列出所有阶段。
var Stages = []Stage{StageGenerate, StageOptimize, StageIllustrate, StageSave, StageAssemble, StageWrite}

// Event 是一次进度通知。Progress 取值 [0, 1]。
type Event struct {
	Stage    Stage   `json:"stage"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}

// Observer 接收进度通知，可能在不同 goroutine 中被调用。
type Observer interface {
	Observe(Event)
}

// ObserverFunc 把函数适配为 Observer。
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// State 记录最近一次通知，零值表示 idle。
type State struct {
	mu   sync.RWMutex
	last Event
}

func (s *State) Observe(e Event) {
	s.mu.Lock()
	s.last = e
	s.mu.Unlock()
}

// Snapshot 返回当前状态。
func (s *State) Snapshot() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last.Status == "" {
		return Event{Status: StatusIdle}
	}
	return s.last
}
