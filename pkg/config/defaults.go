package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesHost    = "api.kokocares.org"
	DefaultRulesPath    = "/keywords"
	DefaultRulesTimeout = 30 * time.Second
	DefaultRulesTTL     = time.Hour
	DefaultBumpOnFatal  = true
	DefaultFallback     = false

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 45 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(64 << 10)
	DefaultRateLimitRPS    = 100.0
	DefaultRateLimitBurst  = 200

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingRedact      = true
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "keywords"
	DefaultMetricsPath        = "/metrics"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "keywords"
)

// DefaultConfig returns a configuration with every default applied,
// including the boolean defaults that ApplyDefaults cannot infer.
// YAML is unmarshalled on top of it so explicit false values survive.
func DefaultConfig() *Config {
	cfg := &Config{
		Rules: RulesConfig{
			BumpOnFatal:         DefaultBumpOnFatal,
			FallbackToBootstrap: DefaultFallback,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Redact: DefaultLoggingRedact},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{SampleRatio: DefaultTracingSampleRatio},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued string, number and duration field.
// Boolean fields are left alone; see DefaultConfig.
func ApplyDefaults(cfg *Config) {
	// Rules defaults
	if cfg.Rules.Host == "" {
		cfg.Rules.Host = DefaultRulesHost
	}
	if cfg.Rules.Timeout == 0 {
		cfg.Rules.Timeout = DefaultRulesTimeout
	}
	if cfg.Rules.DefaultTTL == 0 {
		cfg.Rules.DefaultTTL = DefaultRulesTTL
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.RateLimit.RPS == 0 {
		cfg.Server.RateLimit.RPS = DefaultRateLimitRPS
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
