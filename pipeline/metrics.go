package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 汇总流水线的运行指标。nil 的 *Metrics 可以直接使用，不记录任何数据。
type Metrics struct {
	runs   *prometheus.CounterVec
	stages *prometheus.HistogramVec
	images *prometheus.CounterVec
}

// NewMetrics 在 reg 上注册指标。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seo_article",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		stages: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seo_article",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		images: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seo_article",
			Name:      "illustrations_total",
			Help:      "Illustration slots by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeStage(stage Stage, since time.Time) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(string(stage)).Observe(time.Since(since).Seconds())
}

func (m *Metrics) run(status Status) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) illustrations(ok, skipped int) {
	if m == nil {
		return
	}
	m.images.WithLabelValues("ok").Add(float64(ok))
	m.images.WithLabelValues("skipped").Add(float64(skipped))
}
