// Package config provides configuration management for the keywords service.
//
// Configuration is read from a YAML file, completed with defaults, overridden
// from the environment, and validated before any component is constructed.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("keywords.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("keywords.yaml")
//
//  3. From the environment only, as the language bindings do:
//     cfg, err := config.FromEnv()
//
// # Environment Variables
//
// KOKO_KEYWORDS_URL and KOKO_KEYWORDS_AUTH select the rule service. They are
// mutually exclusive: URL is a full endpoint (credentials may be embedded as
// userinfo), AUTH is a credential combined with the fixed rule host.
//
// Every other field can be overridden with KEYWORDS_SECTION_FIELD, for example:
//
//   - KEYWORDS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - KEYWORDS_RULES_DEFAULT_TTL overrides rules.default_ttl
//   - KEYWORDS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// Validation collects every problem before failing:
//
//	configuration validation failed with 2 errors:
//	  - rules.auth: url and auth are mutually exclusive
//	  - telemetry.logging.level: invalid logging level "loud"
//
// Every validation failure matches ErrConfiguration through errors.Is.
//
// # Example Configuration
//
//	rules:
//	  auth: "${KOKO_KEYWORDS_AUTH}"
//	  timeout: "10s"
//	  bump_on_fatal: true
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	  rate_limit:
//	    enabled: true
//	    rps: 50
//	    burst: 100
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
