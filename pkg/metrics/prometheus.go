package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	postsScanned    prometheus.Counter
	commentsScanned prometheus.Counter
	mentionsTotal   *prometheus.CounterVec
	skipsTotal      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	hotSymbols      prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		postsScanned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickerpulse_posts_scanned_total",
				Help: "Total number of posts scanned for mentions",
			},
		),
		commentsScanned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tickerpulse_comments_scanned_total",
				Help: "Total number of comments scanned for mentions",
			},
		),
		mentionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerpulse_mentions_total",
				Help: "Total symbol mentions detected",
			},
			[]string{"symbol"},
		),
		skipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickerpulse_skips_total",
				Help: "Total records skipped during a run",
			},
			[]string{"kind"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tickerpulse_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		hotSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tickerpulse_hot_symbols",
				Help: "Number of hot symbols in the most recent run",
			},
		),
	}
}

// RecordPostScanned counts one scanned post.
func (r *Recorder) RecordPostScanned() {
	r.postsScanned.Inc()
}

// RecordCommentScanned counts one scanned comment.
func (r *Recorder) RecordCommentScanned() {
	r.commentsScanned.Inc()
}

// RecordMentions adds n mentions for a symbol.
func (r *Recorder) RecordMentions(symbol string, n int) {
	if n > 0 {
		r.mentionsTotal.WithLabelValues(symbol).Add(float64(n))
	}
}

// RecordSkip counts a skipped record by kind.
func (r *Recorder) RecordSkip(kind string) {
	r.skipsTotal.WithLabelValues(kind).Inc()
}

// RecordStageDuration records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageDuration(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordHotSymbols sets the hot symbol count for the latest run.
func (r *Recorder) RecordHotSymbols(n int) {
	r.hotSymbols.Set(float64(n))
}
