package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with a valid auth-based configuration.
func NewTestConfig() *ConfigBuilder {
	cfg := DefaultConfig()
	cfg.Rules.Auth = "test-token"
	return &ConfigBuilder{cfg: *cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithURL switches the rule source to a full URL.
func (b *ConfigBuilder) WithURL(u string) *ConfigBuilder {
	b.cfg.Rules.Auth = ""
	b.cfg.Rules.URL = u
	return b
}

// WithAuth switches the rule source to an auth credential.
func (b *ConfigBuilder) WithAuth(auth string) *ConfigBuilder {
	b.cfg.Rules.URL = ""
	b.cfg.Rules.Auth = auth
	return b
}

// WithRulesFile switches the rule source to a local file.
func (b *ConfigBuilder) WithRulesFile(path string) *ConfigBuilder {
	b.cfg.Rules.RulesFile = path
	return b
}

// WithDefaultTTL sets the default rule TTL.
func (b *ConfigBuilder) WithDefaultTTL(d time.Duration) *ConfigBuilder {
	b.cfg.Rules.DefaultTTL = d
	return b
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithRateLimit enables rate limiting.
func (b *ConfigBuilder) WithRateLimit(rps float64, burst int) *ConfigBuilder {
	b.cfg.Server.RateLimit = RateLimitConfig{Enabled: true, RPS: rps, Burst: burst}
	return b
}

// WithLogging sets the logging level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithTracing enables tracing against endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string, ratio float64) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	b.cfg.Telemetry.Tracing.SampleRatio = ratio
	return b
}
