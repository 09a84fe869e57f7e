// Package server exposes the match engine over HTTP.
//
// # Routes
//
//	POST /match              {"text", "filter", "version"} -> {"matched": bool}
//	GET  /health             liveness
//	GET  /ready              readiness (a fresh rule set is cached)
//	GET  /version            build information
//	GET  /metrics            Prometheus metrics, when enabled
//	GET  /v1/rules           cached rule set status
//	POST /v1/rules/refresh   drop and refetch a version (?version=v2)
//
// A /match request without "text" is answered with 400 and
// {"error": "text param required"}. Match failures are answered with
// {"error": description, "code": n} using the stable result codes of the
// keywords package.
//
// # Lifecycle
//
// Start blocks until the context is cancelled, SIGINT or SIGTERM is received,
// or the listener fails, then shuts down gracefully within the configured
// shutdown timeout.
//
//	srv := server.NewServer(&cfg.Server, client, server.Options{Metrics: collector})
//	if err := srv.Start(ctx); err != nil {
//	    slog.Error("server error", "error", err)
//	}
package server
