package metrics

import (
	"sync"
	"time"

	"kokocares/keywords/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// MaxCacheKeys bounds the number of distinct cache key label values.
const MaxCacheKeys = 100

// OtherKey replaces cache keys beyond MaxCacheKeys.
const OtherKey = "other"

// Collector owns the registry and every metric family of the service.
// It implements cache.Observer.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	matchMetrics *MatchMetrics
	cacheMetrics *CacheMetrics
	httpMetrics  *HTTPMetrics

	keyLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector. If registry is nil a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "keywords"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:       cfg,
		registry:     registry,
		matchMetrics: NewMatchMetrics(cfg, registry),
		cacheMetrics: NewCacheMetrics(cfg, registry),
		httpMetrics:  NewHTTPMetrics(cfg, registry),
		keyLimiter:   NewCardinalityLimiter(MaxCacheKeys),
	}
}

// RecordMatch records one match call.
//
// Parameters:
//   - outcome: "matched", "not_matched", or an error code name
//   - duration: time spent in the call, including any refresh
func (c *Collector) RecordMatch(outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.matchMetrics.RecordMatch(outcome, duration)
}

// ObserveLookup records a cache lookup result.
func (c *Collector) ObserveLookup(key, result string) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordLookup(result)
}

// ObserveRefresh records a refresh outcome and its duration.
func (c *Collector) ObserveRefresh(key, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordRefresh(outcome, duration)
}

// ObserveEntry records the pattern count of a newly stored rule set.
func (c *Collector) ObserveEntry(key string, patterns int) {
	if !c.config.Enabled {
		return
	}
	if !c.keyLimiter.Allow(key) {
		key = OtherKey
	}
	c.cacheMetrics.UpdatePatterns(key, patterns)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.httpMetrics.RecordRequest(route, method, status, duration)
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
