// Package metrics provides Prometheus metrics for the keywords service.
//
// # Metrics Categories
//
//   - Match Metrics: match outcomes by result code and evaluation latency
//   - Cache Metrics: lookups by result, refreshes by outcome, refresh latency,
//     pattern count per cache key
//   - HTTP Metrics: request count and latency by route and status
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector is a cache.Observer
//	rc := cache.New(src, nil, cache.WithObserver(collector))
//
//	collector.RecordMatch("matched", 120*time.Microsecond)
//	http.Handle("/metrics", collector.Handler())
//
// # Prometheus Endpoint
//
//	# HELP keywords_cache_refreshes_total Total number of rule refresh attempts
//	# TYPE keywords_cache_refreshes_total counter
//	keywords_cache_refreshes_total{outcome="success"} 3
//	keywords_cache_refreshes_total{outcome="unavailable"} 1
//
// # Cardinality Management
//
// Cache keys come from caller-supplied versions. Once MaxCacheKeys distinct
// keys have been seen, further keys are recorded as "other".
package metrics
