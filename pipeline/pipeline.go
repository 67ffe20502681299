// Package pipeline 串联生成、优化、配图、组装和输出各阶段。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"auto_seo_article_generator/document"
	"auto_seo_article_generator/illustrate"
	"auto_seo_article_generator/publisher"
	"auto_seo_article_generator/seo"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// 命令行和接口的默认请求参数。
const (
	DefaultRequirements = "写一篇关于人工智能在日常生活中的应用的文章"
	DefaultWordCount    = 1000
	DefaultWatermark    = "版权所有"
)

// 各阶段开始时的进度。
var stageProgress = map[Stage]float64{
	StageGenerate:   0,
	StageOptimize:   0.4,
	StageIllustrate: 0.5,
	StageSave:       0.8,
	StageAssemble:   0.85,
	StageWrite:      0.9,
}

// ContentSource 根据需求生成文章文本。
type ContentSource interface {
	Generate(ctx context.Context, requirements string, wordCount int) (string, error)
}

// ContentFunc 把函数适配为 ContentSource。
type ContentFunc func(ctx context.Context, requirements string, wordCount int) (string, error)

func (f ContentFunc) Generate(ctx context.Context, requirements string, wordCount int) (string, error) {
	return f(ctx, requirements, wordCount)
}

// Request 是一次生成请求。Watermark 为空时不加水印。
type Request struct {
	Requirements string              `json:"requirements"`
	WordCount    int                 `json:"word_count"`
	Watermark    string              `json:"watermark"`
	Position     illustrate.Position `json:"position,omitempty"`
	HTML         bool                `json:"html,omitempty"`
}

// Result 是一次成功运行的产物。
type Result struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Metadata seo.Metadata      `json:"metadata"`
	Images   []string          `json:"images"`
	Document document.Document `json:"document"`
	Files    publisher.Files   `json:"files"`
	Warnings []string          `json:"warnings,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// Options 是构造 Pipeline 所需的组件。
type Options struct {
	Content     ContentSource
	Illustrator *illustrate.Illustrator
	Publisher   *publisher.Publisher
	OutputDir   string
	Metrics     *Metrics
	Logger      *zap.Logger
}

// Pipeline 执行完整的生成流程，可并发调用 Run。
type Pipeline struct {
	content     ContentSource
	illustrator *illustrate.Illustrator
	assembler   *document.Assembler
	publisher   *publisher.Publisher
	imageDir    string
	metrics     *Metrics
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// New 创建 Pipeline。
func New(opts Options) (*Pipeline, error) {
	if opts.Content == nil {
		return nil, errors.New("pipeline: content source is required")
	}
	if opts.Illustrator == nil {
		return nil, errors.New("pipeline: illustrator is required")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pub := opts.Publisher
	if pub == nil {
		pub = publisher.New(opts.OutputDir, logger)
	}
	return &Pipeline{
		content:     opts.Content,
		illustrator: opts.Illustrator,
		assembler:   document.NewAssembler(logger),
		publisher:   pub,
		imageDir:    filepath.Join(opts.OutputDir, "images"),
		metrics:     opts.Metrics,
		logger:      logger,
		now:         time.Now,
		newID:       func() string { return uuid.NewString()[:8] },
	}, nil
}

// Normalize 填充请求中的默认值。
func (r Request) Normalize() Request {
	if r.Requirements == "" {
		r.Requirements = DefaultRequirements
	}
	if r.WordCount <= 0 {
		r.WordCount = DefaultWordCount
	}
	if r.Position == "" {
		r.Position = illustrate.BottomRight
	}
	return r
}

type run struct {
	p     *Pipeline
	obs   Observer
	stage Stage
	start time.Time
}

func (r *run) begin(stage Stage, msg string) {
	r.stage, r.start = stage, time.Now()
	r.obs.Observe(Event{Stage: stage, Status: StatusRunning, Progress: stageProgress[stage], Message: msg})
}

func (r *run) end() {
	r.p.metrics.observeStage(r.stage, r.start)
}

func (r *run) fail(err error) error {
	r.end()
	r.p.metrics.run(StatusFailed)
	r.p.logger.Error("pipeline failed", zap.String("stage", string(r.stage)), zap.Error(err))
	r.obs.Observe(Event{Stage: r.stage, Status: StatusFailed, Progress: stageProgress[r.stage], Message: err.Error()})
	return fmt.Errorf("%s: %w", r.stage, err)
}

// Run 执行一次完整流程。生成失败或输出失败时返回错误；单张配图失败只记为警告。
func (p *Pipeline) Run(ctx context.Context, req Request, obs Observer) (Result, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	req = req.Normalize()
	if _, err := illustrate.ParsePosition(string(req.Position)); err != nil {
		return Result{}, err
	}
	started := time.Now()
	res := Result{ID: uuid.NewString()}
	r := &run{p: p, obs: obs}
	rl := p.logger.With(zap.String("run", res.ID))

	r.begin(StageGenerate, "正在生成文章")
	text, err := p.content.Generate(ctx, req.Requirements, req.WordCount)
	if err != nil {
		return Result{}, r.fail(err)
	}
	r.end()
	rl.Info("article generated", zap.Int("chars", len([]rune(text))))

	r.begin(StageOptimize, "正在进行SEO优化")
	res.Text = seo.Optimize(text)
	res.Metadata, _ = seo.Decode(res.Text)
	res.Title = res.Metadata.Title
	r.end()

	r.begin(StageIllustrate, "正在生成配图")
	slots := len(illustrate.Select(res.Text))
	ills, err := p.illustrator.Illustrate(ctx, res.Text, illustrate.Watermark{Text: req.Watermark, Position: req.Position})
	for _, e := range multierr.Errors(err) {
		res.Warnings = append(res.Warnings, e.Error())
	}
	p.metrics.illustrations(len(ills), slots-len(ills))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, r.fail(ctxErr)
	}
	r.end()

	r.begin(StageSave, "正在保存图片")
	paths, warnings := p.saveImages(p.imageDir, ills)
	res.Images = paths
	res.Warnings = append(res.Warnings, warnings...)
	r.end()

	r.begin(StageAssemble, "正在组装文档")
	res.Document = p.assembler.Assemble(res.Text, paths)
	res.Document.Metadata = res.Metadata
	r.end()

	r.begin(StageWrite, "正在保存文档")
	files, err := p.publisher.Publish(res.Document, req.HTML)
	if err != nil {
		return Result{}, r.fail(err)
	}
	res.Files = files
	r.end()

	res.Duration = time.Since(started)
	p.metrics.run(StatusCompleted)
	obs.Observe(Event{Stage: StageWrite, Status: StatusCompleted, Progress: 1, Message: "文章已保存到: " + files.DOCX})
	rl.Info("pipeline completed",
		zap.String("docx", files.DOCX),
		zap.Int("images", len(paths)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("took", res.Duration))
	return res, nil
}
