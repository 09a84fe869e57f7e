package server

import (
	"net/http"
	"time"

	"kokocares/keywords/pkg/server/middleware"
	"kokocares/keywords/pkg/telemetry/health"

	"github.com/go-chi/chi/v5"
)

// Handler returns the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestID)
	if s.opts.Tracer != nil {
		r.Use(s.opts.Tracer.HTTPMiddleware)
	}
	r.Use(middleware.Logging(s.logger))
	if s.opts.Metrics != nil && s.opts.Metrics.Enabled() {
		r.Use(s.requestMetrics)
	}

	r.Get("/health", s.opts.Health.LivenessHandler())
	r.Get("/ready", s.opts.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.opts.Version, s.opts.Commit, s.opts.BuildTime))
	if s.opts.Metrics != nil && s.opts.Metrics.Enabled() {
		r.Method(http.MethodGet, s.opts.MetricsPath, s.opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.config.RateLimit.Enabled {
			r.Use(middleware.RateLimit(s.config.RateLimit.RPS, s.config.RateLimit.Burst))
		}
		r.Use(middleware.MaxBodyBytes(s.config.MaxBodyBytes))

		r.Post("/match", s.handleMatch)
	})

	r.Route("/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleRulesStatus)
		r.Post("/refresh", s.handleRulesRefresh)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// requestMetrics records one observation per request, labelled by route pattern.
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw, status := middleware.StatusRecorder(w)

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		s.opts.Metrics.RecordHTTPRequest(route, r.Method, status(), time.Since(start))
	})
}
