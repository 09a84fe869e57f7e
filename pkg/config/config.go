package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration structure for the keywords service.
type Config struct {
	// Rules selects the rule service and the cache failure policy.
	Rules RulesConfig `yaml:"rules"`

	// Server contains the HTTP match service configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RulesConfig configures where rules come from and how refresh failures are handled.
type RulesConfig struct {
	// URL is the full rule service endpoint. Credentials may be embedded as userinfo.
	// Mutually exclusive with Auth.
	URL string `yaml:"url"`

	// Auth is the credential combined with Host to build the endpoint.
	// Mutually exclusive with URL.
	Auth string `yaml:"auth"`

	// Host is the rule service host used together with Auth.
	// Default: "api.kokocares.org"
	Host string `yaml:"host"`

	// Timeout bounds a single fetch.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// DefaultTTL is used when the service sends no max-age, when rules come
	// from RulesFile, and as the bump after a fatal refresh failure.
	// Default: 1h
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// BumpOnFatal pushes expiry forward after invalid url or credential failures.
	// Default: true
	BumpOnFatal bool `yaml:"bump_on_fatal"`

	// FallbackToBootstrap serves stale or built-in rules instead of refresh errors.
	// Default: false
	FallbackToBootstrap bool `yaml:"fallback_to_bootstrap"`

	// RulesFile reads the payload from a local file instead of the service.
	// When set, URL and Auth are ignored.
	RulesFile string `yaml:"rules_file"`
}

// Endpoint returns the rule service URL derived from URL or Auth.
// It returns an empty string when rules come from RulesFile.
func (r *RulesConfig) Endpoint() string {
	switch {
	case r.RulesFile != "":
		return ""
	case r.URL != "":
		return r.URL
	case r.Auth != "":
		host := r.Host
		if host == "" {
			host = DefaultRulesHost
		}
		u := url.URL{
			Scheme: "https",
			User:   url.User(r.Auth),
			Host:   host,
			Path:   DefaultRulesPath,
		}
		return u.String()
	default:
		return ""
	}
}

// ServerConfig contains configuration for the HTTP match service.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must cover a synchronous rule refresh.
	// Default: 45s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps the size of a match request body.
	// Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RateLimit throttles the match endpoint.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures the token bucket in front of /match.
type RateLimitConfig struct {
	// Enabled turns rate limiting on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// RPS is the sustained request rate.
	// Default: 100
	RPS float64 `yaml:"rps"`

	// Burst is the bucket size.
	// Default: 200
	Burst int `yaml:"burst"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks query text and credentials in log entries.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "keywords"
	Namespace string `yaml:"namespace"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "keywords"
	ServiceName string `yaml:"service_name"`
}

// String summarizes the configuration without credentials.
func (c *Config) String() string {
	source := "file:" + c.Rules.RulesFile
	if c.Rules.RulesFile == "" {
		source = redactURL(c.Rules.Endpoint())
	}
	return fmt.Sprintf("rules=%s listen=%s log=%s/%s metrics=%t tracing=%t",
		source, c.Server.ListenAddress,
		c.Telemetry.Logging.Level, c.Telemetry.Logging.Format,
		c.Telemetry.Metrics.Enabled, c.Telemetry.Tracing.Enabled)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	if u.User != nil {
		u.User = url.User("xxxxx")
	}
	return u.String()
}
