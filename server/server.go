// Package server 提供 HTTP 接口：提交生成任务、查询进度、即时优化文本和 Prometheus 指标。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"auto_seo_article_generator/illustrate"
	"auto_seo_article_generator/pipeline"
	"auto_seo_article_generator/seo"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Runner 执行一次完整的生成流程，*pipeline.Pipeline 实现了它。
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, obs pipeline.Observer) (pipeline.Result, error)
}

// Options 是 Server 的可选配置。
type Options struct {
	// Gatherer 为 nil 时 /metrics 使用默认 registry。
	Gatherer prometheus.Gatherer
	// RunTimeout 是单个任务的最长运行时间，0 表示 30 分钟。
	RunTimeout time.Duration
	// Watermark 是请求未给出水印时使用的文字，nil 表示 pipeline.DefaultWatermark，空字符串表示不加水印。
	Watermark *string
	// Position 是请求未给出位置时使用的水印位置，空表示右下角。
	Position illustrate.Position
	Logger   *zap.Logger
}

type Server struct {
	runner  Runner
	store   *runStore
	metrics http.Handler
	timeout time.Duration
	// 请求未指定时的水印文字与位置
	watermark string
	position  illustrate.Position
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// run 是一个已提交的任务。
type run struct {
	id      string
	created time.Time
	state   pipeline.State

	mu     sync.Mutex
	result *pipeline.Result
	err    error
}

type runStore struct {
	mu   sync.Mutex
	runs map[string]*run
}

func newStore() *runStore {
	return &runStore{runs: make(map[string]*run)}
}

func (s *runStore) set(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.id] = r
}

func (s *runStore) get(id string) (*run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func New(runner Runner, opts Options) (*Server, error) {
	if runner == nil {
		return nil, errors.New("pipeline runner required")
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	timeout := opts.RunTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	watermark := pipeline.DefaultWatermark
	if opts.Watermark != nil {
		watermark = *opts.Watermark
	}
	position, err := illustrate.ParsePosition(string(opts.Position))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:    runner,
		store:     newStore(),
		metrics:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		timeout:   timeout,
		watermark: watermark,
		position:  position,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/articles", s.handleRunCreate)
	mux.HandleFunc("GET /api/articles/{id}", s.handleRunByID)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	mux.Handle("GET /metrics", s.metrics)
	return s.logMiddleware(mux)
}

// Close 取消所有进行中的任务并等待其退出。
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// --- Handlers ---

type runCreateReq struct {
	Requirements string `json:"requirements"`
	WordCount    int    `json:"word_count"`
	// nil 时使用默认水印，空字符串表示不加水印
	Watermark *string `json:"watermark"`
	Position  string  `json:"position"`
	HTML      bool    `json:"html"`
}

type runResp struct {
	ID      string           `json:"id"`
	Created time.Time        `json:"created"`
	State   pipeline.Event   `json:"state"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type optimizeReq struct {
	Text string `json:"text"`
}

type optimizeResp struct {
	Text     string            `json:"text"`
	Metadata seo.Metadata      `json:"metadata"`
	Slots    []illustrate.Slot `json:"slots"`
}

func (s *Server) handleRunCreate(w http.ResponseWriter, r *http.Request) {
	var req runCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pos, err := illustrate.ParsePosition(req.Position)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Position == "" {
		pos = s.position
	}
	watermark := s.watermark
	if req.Watermark != nil {
		watermark = *req.Watermark
	}
	preq := pipeline.Request{
		Requirements: req.Requirements,
		WordCount:    req.WordCount,
		Watermark:    watermark,
		Position:     pos,
		HTML:         req.HTML,
	}

	rn := &run{id: uuid.NewString(), created: time.Now()}
	s.store.set(rn)
	s.wg.Add(1)
	go s.execute(rn, preq)

	writeJSONStatus(w, http.StatusAccepted, rn.response())
}

func (s *Server) execute(rn *run, req pipeline.Request) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, req, &rn.state)
	rn.mu.Lock()
	defer rn.mu.Unlock()
	if err != nil {
		rn.err = err
		// Runner 未上报失败时补一条
		if st := rn.state.Snapshot(); st.Status != pipeline.StatusFailed {
			rn.state.Observe(pipeline.Event{Stage: st.Stage, Status: pipeline.StatusFailed, Progress: st.Progress, Message: err.Error()})
		}
		s.logger.Warn("run failed", zap.String("id", rn.id), zap.Error(err))
		return
	}
	rn.result = &res
	s.logger.Info("run completed", zap.String("id", rn.id), zap.String("docx", res.Files.DOCX))
}

func (rn *run) response() runResp {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	resp := runResp{ID: rn.id, Created: rn.created, State: rn.state.Snapshot(), Result: rn.result}
	if rn.err != nil {
		resp.Error = rn.err.Error()
	}
	return resp
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.store.get(r.PathValue("id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rn.response())
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := seo.Optimize(req.Text)
	meta, _ := seo.Decode(text)
	slots := illustrate.Select(text)
	if slots == nil {
		slots = []illustrate.Slot{}
	}
	writeJSON(w, optimizeResp{Text: text, Metadata: meta, Slots: slots})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
