package metrics

import (
	"time"

	"kokocares/keywords/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the rule cache.
//
// Metrics:
//   - keywords_cache_lookups_total: lookups by result (hit, miss, stale, suppressed, forced)
//   - keywords_cache_refreshes_total: refresh attempts by outcome
//   - keywords_cache_refresh_duration_seconds: refresh latency
//   - keywords_cache_entry_patterns: pattern count of the rule set held per key
type CacheMetrics struct {
	lookupsTotal    *prometheus.CounterVec
	refreshesTotal  *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	entryPatterns   *prometheus.GaugeVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of rule cache lookups by result",
			},
			[]string{"result"},
		),

		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_refreshes_total",
				Help:      "Total number of rule refresh attempts",
			},
			[]string{"outcome"},
		),

		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_refresh_duration_seconds",
				Help:      "Duration of rule refreshes in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),

		entryPatterns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_entry_patterns",
				Help:      "Number of patterns in the rule set held for a cache key",
			},
			[]string{"key"},
		),
	}

	registry.MustRegister(
		cm.lookupsTotal,
		cm.refreshesTotal,
		cm.refreshDuration,
		cm.entryPatterns,
	)

	return cm
}

// RecordLookup records a lookup result.
func (cm *CacheMetrics) RecordLookup(result string) {
	cm.lookupsTotal.WithLabelValues(result).Inc()
}

// RecordRefresh records a refresh attempt.
func (cm *CacheMetrics) RecordRefresh(outcome string, duration time.Duration) {
	cm.refreshesTotal.WithLabelValues(outcome).Inc()
	cm.refreshDuration.Observe(duration.Seconds())
}

// UpdatePatterns sets the pattern count for a cache key.
func (cm *CacheMetrics) UpdatePatterns(key string, patterns int) {
	cm.entryPatterns.WithLabelValues(key).Set(float64(patterns))
}
