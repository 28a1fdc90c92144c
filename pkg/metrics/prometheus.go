package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshes   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	hybridScore *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_refreshes_total",
				Help: "Total number of signal refreshes by result",
			},
			[]string{"symbol", "timeframe", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocklens_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		hybridScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocklens_hybrid_score",
				Help: "Last computed hybrid score for a signal key",
			},
			[]string{"symbol", "timeframe"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRefresh records a completed refresh attempt for a signal key.
func (r *Recorder) RecordRefresh(symbol, timeframe, result string) {
	r.refreshes.WithLabelValues(symbol, timeframe, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordHybridScore records the last hybrid score for a signal key.
func (r *Recorder) RecordHybridScore(symbol, timeframe string, score float64) {
	r.hybridScore.WithLabelValues(symbol, timeframe).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
