package tracing

import (
	"net/http"

	"kokocares/keywords/pkg/telemetry/logging"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used by the service's spans.
const (
	AttrRulesVersion = "rules.version"
	AttrCacheKey     = "rules.cache_key"
	AttrMatchResult  = "match.matched"
	AttrMatchCode    = "match.code"
	AttrFilter       = "match.filter"
	AttrRequestID    = "request.id"
)

// MatchAttributes describes a match call. version is the requested rules
// version, empty for the latest. Query text is never recorded.
func MatchAttributes(version, cacheKey, filter string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRulesVersion, version),
		attribute.String(AttrCacheKey, cacheKey),
		attribute.String(AttrFilter, filter),
	}
}

// VersionAttribute describes the requested rules version.
func VersionAttribute(version string) attribute.KeyValue {
	return attribute.String(AttrRulesVersion, version)
}

// ResultAttributes describes a match outcome.
func ResultAttributes(matched bool, code int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrMatchResult, matched),
		attribute.Int(AttrMatchCode, code),
	}
}

// HTTPRequestAttributes describes an inbound HTTP request, including the
// request ID when one is in the request context.
func HTTPRequestAttributes(r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", r.Method),
		attribute.String("http.target", r.URL.Path),
		attribute.String("http.user_agent", r.UserAgent()),
	}
	if id := logging.GetRequestID(r.Context()); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	return attrs
}
