package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Rules.Host != DefaultRulesHost {
					t.Errorf("expected host %q, got %q", DefaultRulesHost, cfg.Rules.Host)
				}
				if cfg.Rules.Timeout != DefaultRulesTimeout {
					t.Errorf("expected timeout %v, got %v", DefaultRulesTimeout, cfg.Rules.Timeout)
				}
				if cfg.Rules.DefaultTTL != DefaultRulesTTL {
					t.Errorf("expected default ttl %v, got %v", DefaultRulesTTL, cfg.Rules.DefaultTTL)
				}
				if cfg.Server.ListenAddress != DefaultListenAddress {
					t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
				}
				if cfg.Server.WriteTimeout != DefaultWriteTimeout {
					t.Errorf("expected write timeout %v, got %v", DefaultWriteTimeout, cfg.Server.WriteTimeout)
				}
				if cfg.Server.MaxBodyBytes != DefaultMaxBodyBytes {
					t.Errorf("expected max body bytes %d, got %d", DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
				}
				if cfg.Server.RateLimit.Burst != DefaultRateLimitBurst {
					t.Errorf("expected burst %d, got %d", DefaultRateLimitBurst, cfg.Server.RateLimit.Burst)
				}
				if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
					t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Telemetry.Logging.Level)
				}
				if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
					t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
				}
				if cfg.Telemetry.Tracing.ServiceName != DefaultTracingServiceName {
					t.Errorf("expected service name %q, got %q", DefaultTracingServiceName, cfg.Telemetry.Tracing.ServiceName)
				}
			},
		},
		{
			name: "explicit values are kept",
			input: Config{
				Rules:  RulesConfig{Host: "rules.internal", Timeout: 5 * time.Second},
				Server: ServerConfig{ListenAddress: "0.0.0.0:9000"},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Rules.Host != "rules.internal" {
					t.Errorf("expected host to be kept, got %q", cfg.Rules.Host)
				}
				if cfg.Rules.Timeout != 5*time.Second {
					t.Errorf("expected timeout to be kept, got %v", cfg.Rules.Timeout)
				}
				if cfg.Server.ListenAddress != "0.0.0.0:9000" {
					t.Errorf("expected listen address to be kept, got %q", cfg.Server.ListenAddress)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestDefaultConfig_Booleans(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Rules.BumpOnFatal != DefaultBumpOnFatal {
		t.Errorf("expected bump_on_fatal %t", DefaultBumpOnFatal)
	}
	if cfg.Rules.FallbackToBootstrap != DefaultFallback {
		t.Errorf("expected fallback_to_bootstrap %t", DefaultFallback)
	}
	if !cfg.Telemetry.Logging.Redact {
		t.Error("expected redaction on by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics on by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing off by default")
	}
	if cfg.Telemetry.Tracing.SampleRatio != DefaultTracingSampleRatio {
		t.Errorf("expected sample ratio %v, got %v", DefaultTracingSampleRatio, cfg.Telemetry.Tracing.SampleRatio)
	}
}
