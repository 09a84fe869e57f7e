package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by the language bindings.
const (
	EnvURL  = "KOKO_KEYWORDS_URL"
	EnvAuth = "KOKO_KEYWORDS_AUTH"
)

// EnvPrefix prefixes every KEYWORDS_SECTION_FIELD override.
const EnvPrefix = "KEYWORDS_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables always take precedence
// over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file on top of DefaultConfig
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// FromEnv builds configuration from defaults and the environment alone.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Binding variables
	envString(EnvURL, &cfg.Rules.URL)
	envString(EnvAuth, &cfg.Rules.Auth)

	// Rules overrides
	envString(EnvPrefix+"RULES_URL", &cfg.Rules.URL)
	envString(EnvPrefix+"RULES_AUTH", &cfg.Rules.Auth)
	envString(EnvPrefix+"RULES_HOST", &cfg.Rules.Host)
	envDuration(EnvPrefix+"RULES_TIMEOUT", &cfg.Rules.Timeout)
	envDuration(EnvPrefix+"RULES_DEFAULT_TTL", &cfg.Rules.DefaultTTL)
	envBool(EnvPrefix+"RULES_BUMP_ON_FATAL", &cfg.Rules.BumpOnFatal)
	envBool(EnvPrefix+"RULES_FALLBACK_TO_BOOTSTRAP", &cfg.Rules.FallbackToBootstrap)
	envString(EnvPrefix+"RULES_RULES_FILE", &cfg.Rules.RulesFile)

	// Server overrides
	envString(EnvPrefix+"SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration(EnvPrefix+"SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration(EnvPrefix+"SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration(EnvPrefix+"SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration(EnvPrefix+"SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv(EnvPrefix + "SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}
	envBool(EnvPrefix+"SERVER_RATE_LIMIT_ENABLED", &cfg.Server.RateLimit.Enabled)
	if val := os.Getenv(EnvPrefix + "SERVER_RATE_LIMIT_RPS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Server.RateLimit.RPS = f
		}
	}
	if val := os.Getenv(EnvPrefix + "SERVER_RATE_LIMIT_BURST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.RateLimit.Burst = i
		}
	}

	// Telemetry overrides
	envString(EnvPrefix+"TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString(EnvPrefix+"TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool(EnvPrefix+"TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool(EnvPrefix+"TELEMETRY_LOGGING_REDACT", &cfg.Telemetry.Logging.Redact)
	envBool(EnvPrefix+"TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString(EnvPrefix+"TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envString(EnvPrefix+"TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool(EnvPrefix+"TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString(EnvPrefix+"TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool(EnvPrefix+"TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
	envString(EnvPrefix+"TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
}

func envString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
