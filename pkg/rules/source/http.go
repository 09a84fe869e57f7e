package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"kokocares/keywords/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ProtocolHeader carries the response schema version the client understands.
	ProtocolHeader = "X-Keywords-Protocol"

	// ProtocolVersion is the schema version sent in ProtocolHeader.
	ProtocolVersion = "2"

	// VersionParam is the query parameter selecting a rule version.
	VersionParam = "version"

	// MaxBodyBytes caps the size of an accepted payload.
	MaxBodyBytes = 10 << 20

	// DefaultTimeout bounds a single fetch when HTTPConfig.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	tracerName = "kokocares/keywords/pkg/rules/source"
)

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	// Endpoint is the full rule service URL. Userinfo, if present, is sent as basic auth.
	Endpoint string

	// Timeout bounds each fetch (DefaultTimeout when zero).
	Timeout time.Duration

	// DefaultTTL is used when the response has no max-age (DefaultTTL when zero).
	DefaultTTL time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client

	// Tracer overrides the tracer (the global otel provider by default).
	Tracer trace.Tracer

	// Logger overrides the logger (slog.Default by default).
	Logger *slog.Logger
}

// HTTPSource fetches payloads from the remote rule service.
type HTTPSource struct {
	endpoint   *url.URL
	rawURL     string
	urlErr     error
	client     *http.Client
	defaultTTL time.Duration
	userAgent  string
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewHTTPSource creates an HTTP source.
// An unusable endpoint does not fail construction; every Fetch then returns a
// KindInvalidURL error so the failure surfaces through the normal query path.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	s := &HTTPSource{
		rawURL:     cfg.Endpoint,
		client:     cfg.Client,
		defaultTTL: cfg.DefaultTTL,
		userAgent:  cfg.UserAgent,
		tracer:     cfg.Tracer,
		logger:     cfg.Logger,
	}

	s.endpoint, s.urlErr = ValidateEndpoint(cfg.Endpoint)

	if s.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.client = &http.Client{Timeout: timeout}
	}
	if s.defaultTTL <= 0 {
		s.defaultTTL = DefaultTTL
	}
	if s.userAgent == "" {
		s.userAgent = "keywords-go"
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// ValidateEndpoint parses an endpoint and checks it is an absolute http(s) URL.
func ValidateEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// Fetch retrieves the payload for version.
func (s *HTTPSource) Fetch(ctx context.Context, version string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "rules.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(tracing.VersionAttribute(version))

	res, err := s.fetch(ctx, version, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (s *HTTPSource) fetch(ctx context.Context, version string, span trace.Span) (*Result, error) {
	if s.urlErr != nil {
		return nil, &FetchError{Kind: KindInvalidURL, Err: s.urlErr}
	}

	u := *s.endpoint
	if version != "" {
		q := u.Query()
		q.Set(VersionParam, version)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidURL, Err: err}
	}
	req.Header.Set(ProtocolHeader, ProtocolVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	s.logger.DebugContext(ctx, "fetching rules",
		"endpoint", redact(u),
		"version", version,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		drain(resp.Body)
		return nil, &FetchError{Kind: KindInvalidCredentials, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		drain(resp.Body)
		return nil, &FetchError{Kind: KindUnavailable, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Kind: KindUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > MaxBodyBytes {
		return nil, &FetchError{Kind: KindUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("body exceeds %d bytes", MaxBodyBytes)}
	}

	ttl := TTLFromHeader(resp.Header.Get("Cache-Control"), s.defaultTTL)

	s.logger.DebugContext(ctx, "fetched rules",
		"endpoint", redact(u),
		"version", version,
		"bytes", len(body),
		"ttl", ttl.String(),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Body:      body,
		TTL:       ttl,
		FetchedAt: time.Now(),
	}, nil
}

// redact renders u without userinfo.
func redact(u url.URL) string {
	u.User = nil
	return u.String()
}

// drain discards a bounded amount of the body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
}
