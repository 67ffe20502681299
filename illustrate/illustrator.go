package illustrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Watermark 描述要叠加的水印；Text 为空表示不加水印。
type Watermark struct {
	Text     string
	Position Position
}

// Illustration 是一张已生成（可能已加水印）的配图。
type Illustration struct {
	Slot  Slot
	Image []byte
}

// Illustrator 为文章挑选配图位置并逐一生成图片。
type Illustrator struct {
	source      Source
	compositor  *Compositor
	concurrency int
	logger      *zap.Logger
}

// NewIllustrator 创建配图流程。concurrency <= 0 时按顺序生成。
func NewIllustrator(source Source, compositor *Compositor, concurrency int, logger *zap.Logger) (*Illustrator, error) {
	if source == nil {
		return nil, errors.New("image source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if compositor == nil {
		compositor = NewCompositor("", logger)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Illustrator{source: source, compositor: compositor, concurrency: concurrency, logger: logger}, nil
}

// Illustrate 为 text 生成配图，结果按配图位置顺序排列。
//
// 单张图片失败只会被跳过；返回的 error 汇总了所有被跳过的失败，
// 即使 error 非空，返回的配图也都可用。
func (il *Illustrator) Illustrate(ctx context.Context, text string, wm Watermark) ([]Illustration, error) {
	slots := Select(text)
	results := make([]*Illustration, len(slots))

	var (
		mu   sync.Mutex
		errs error
	)
	var g errgroup.Group
	g.SetLimit(il.concurrency)
	for i, slot := range slots {
		g.Go(func() error {
			img, err := il.render(ctx, slot, wm)
			if err != nil {
				il.logger.Warn("skip illustration", zap.Int("slot", i), zap.Int("block", slot.Index), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("slot %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			results[i] = &Illustration{Slot: slot, Image: img}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Illustration, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	il.logger.Info("illustrations ready", zap.Int("slots", len(slots)), zap.Int("images", len(out)))
	return out, errs
}

func (il *Illustrator) render(ctx context.Context, slot Slot, wm Watermark) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := il.source.Synthesize(ctx, slot.Prompt)
	if err != nil {
		return nil, err
	}
	if wm.Text == "" {
		return img, nil
	}
	pos := wm.Position
	if pos == "" {
		pos = BottomRight
	}
	return il.compositor.Composite(img, wm.Text, pos)
}
