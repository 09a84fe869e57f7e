package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kokocares/keywords/pkg/config"
	"kokocares/keywords/pkg/matcher"
	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/cache"
	"kokocares/keywords/pkg/rules/filter"
	"kokocares/keywords/pkg/rules/source"
	"kokocares/keywords/pkg/telemetry/metrics"
	"kokocares/keywords/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Client answers match queries from a rule cache.
type Client struct {
	cache   *cache.Cache
	tracer  trace.Tracer
	metrics *metrics.Collector
	logger  *slog.Logger
}

type options struct {
	source     source.Source
	bootstrap  *rules.RuleSet
	httpClient *http.Client
	userAgent  string
	tracer     trace.Tracer
	metrics    *metrics.Collector
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithSource replaces the source derived from the configuration.
func WithSource(src source.Source) Option {
	return func(o *options) { o.source = src }
}

// WithBootstrap sets the rule set served by fallback before any fetch succeeds.
func WithBootstrap(rs *rules.RuleSet) Option {
	return func(o *options) { o.bootstrap = rs }
}

// WithHTTPClient sets the client used to reach the rule service.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithUserAgent sets the User-Agent sent to the rule service.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTracer sets the tracer for match and fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMetrics records match and cache metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Client from a validated configuration.
// Configuration errors match config.ErrConfiguration and map to CodeAuthMissing.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", config.ErrConfiguration)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracing.InstrumentationName)
	}

	src := o.source
	if src == nil {
		src = newSource(&cfg.Rules, &o)
	}

	cacheOpts := []cache.Option{
		cache.WithPolicy(cache.Policy{
			BumpOnFatal:         cfg.Rules.BumpOnFatal,
			FallbackToBootstrap: cfg.Rules.FallbackToBootstrap,
		}),
		cache.WithDefaultTTL(cfg.Rules.DefaultTTL),
		cache.WithLogger(o.logger),
	}
	if o.metrics != nil {
		cacheOpts = append(cacheOpts, cache.WithObserver(o.metrics))
	}
	if o.now != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(o.now))
	}

	return &Client{
		cache:   cache.New(src, o.bootstrap, cacheOpts...),
		tracer:  o.tracer,
		metrics: o.metrics,
		logger:  o.logger,
	}, nil
}

// NewSource builds the rule source described by cfg: a FileSource when
// RulesFile is set, an HTTPSource for the derived endpoint otherwise.
// WithHTTPClient, WithUserAgent, WithTracer and WithLogger apply.
func NewSource(cfg *config.RulesConfig, opts ...Option) source.Source {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return newSource(cfg, &o)
}

func newSource(cfg *config.RulesConfig, o *options) source.Source {
	if cfg.RulesFile != "" {
		return source.NewFileSource(cfg.RulesFile, cfg.DefaultTTL, o.logger)
	}
	return source.NewHTTPSource(source.HTTPConfig{
		Endpoint:   cfg.Endpoint(),
		Timeout:    cfg.Timeout,
		DefaultTTL: cfg.DefaultTTL,
		UserAgent:  o.userAgent,
		Client:     o.httpClient,
		Tracer:     o.tracer,
		Logger:     o.logger,
	})
}

// Match reports whether text matches any pattern allowed by filterExpr in the
// rule set for version. An empty version selects the latest rules and an
// empty filter allows every pattern.
//
// The filter is parsed before the cache is consulted, so a malformed filter
// never triggers a fetch.
func (c *Client) Match(ctx context.Context, text, filterExpr, version string) (bool, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "keywords.match",
		trace.WithAttributes(tracing.MatchAttributes(version, cache.KeyFor(version), filterExpr)...),
	)
	defer span.End()

	matched, err := c.match(ctx, text, filterExpr, version)
	code := Result(matched, err)

	span.SetAttributes(tracing.ResultAttributes(matched, int(code))...)
	tracing.SetStatus(span, err)

	if c.metrics != nil {
		c.metrics.RecordMatch(code.String(), time.Since(start))
	}
	if err != nil {
		c.logger.DebugContext(ctx, "match failed",
			"version", cache.KeyFor(version),
			"code", int(code),
			"error", err,
		)
	}

	return matched, err
}

func (c *Client) match(ctx context.Context, text, filterExpr, version string) (bool, error) {
	f, err := filter.Parse(filterExpr)
	if err != nil {
		return false, err
	}

	rs, err := c.cache.Get(ctx, version)
	if err != nil {
		return false, err
	}

	return matcher.EvaluateFilter(rs, text, f).Matched, nil
}

// MatchCode is Match folded into a result code.
func (c *Client) MatchCode(ctx context.Context, text, filterExpr, version string) Code {
	return Result(c.Match(ctx, text, filterExpr, version))
}

// Explain returns the pattern that matched, if any.
func (c *Client) Explain(ctx context.Context, text, filterExpr, version string) (matcher.Result, error) {
	f, err := filter.Parse(filterExpr)
	if err != nil {
		return matcher.Result{}, err
	}
	rs, err := c.cache.Get(ctx, version)
	if err != nil {
		return matcher.Result{}, err
	}
	return matcher.EvaluateFilter(rs, text, f), nil
}

// Refresh fetches the rule set for version now. Unlike Match it never falls
// back to stale or bootstrap rules: a failed fetch is always returned.
func (c *Client) Refresh(ctx context.Context, version string) (*rules.RuleSet, error) {
	return c.cache.Refresh(ctx, version)
}

// Status describes every cached entry.
func (c *Client) Status() []cache.EntryStatus {
	return c.cache.Status()
}

// Fresh reports whether the cache holds an unexpired rule set.
func (c *Client) Fresh() bool {
	return c.cache.Fresh()
}

// Cache returns the client's rule cache.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}
