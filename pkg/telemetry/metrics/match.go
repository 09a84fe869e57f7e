package metrics

import (
	"time"

	"kokocares/keywords/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchMetrics tracks match calls.
//
// Metrics:
//   - keywords_matches_total: match calls by outcome
//   - keywords_match_duration_seconds: match latency, including synchronous refreshes
type MatchMetrics struct {
	matchesTotal  *prometheus.CounterVec
	matchDuration prometheus.Histogram
}

// NewMatchMetrics creates and registers match metrics with the provided registry.
func NewMatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *MatchMetrics {
	mm := &MatchMetrics{
		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "matches_total",
				Help:      "Total number of match calls by outcome",
			},
			[]string{"outcome"},
		),

		matchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "match_duration_seconds",
				Help:      "Duration of match calls in seconds",
				// Regex evaluation is sub-millisecond; refreshes reach seconds.
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1, 5, 30},
			},
		),
	}

	registry.MustRegister(mm.matchesTotal, mm.matchDuration)
	return mm
}

// RecordMatch records one match call.
func (mm *MatchMetrics) RecordMatch(outcome string, duration time.Duration) {
	mm.matchesTotal.WithLabelValues(outcome).Inc()
	mm.matchDuration.Observe(duration.Seconds())
}
