// Package tracing provides OpenTelemetry tracing for the keywords service.
//
// When tracing is disabled the Tracer hands out noop spans. When enabled it
// exports spans over OTLP/gRPC and installs itself as the global provider,
// together with the W3C Trace Context propagator, so that the rule fetch
// span ("rules.fetch") and the match span ("keywords.match") join the
// caller's trace.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "keywords.match")
//	defer span.End()
//
// # Sampling
//
// Sampling is parent-based: a sampled caller keeps its decision, root spans
// are sampled by trace ID ratio (sample_ratio, 0.0 to 1.0).
package tracing
