// Package telemetry groups the observability packages of the keywords service.
//
//   - logging: slog handlers with text and credential redaction
//   - metrics: Prometheus collector for matches, cache and HTTP traffic
//   - tracing: OpenTelemetry spans for matches and rule fetches
//   - health: liveness and readiness probes
//
// Query text is never logged, recorded in metrics, or attached to spans.
package telemetry
