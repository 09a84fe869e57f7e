package config

import (
	"strings"
	"testing"
)

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig().Build()

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected test config to be valid, got: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if !cfg.Rules.BumpOnFatal {
		t.Error("expected bump_on_fatal to default to true")
	}
}

func TestRulesConfig_Endpoint(t *testing.T) {
	tests := []struct {
		name  string
		rules RulesConfig
		want  string
	}{
		{
			name:  "auth with default host",
			rules: RulesConfig{Auth: "token123"},
			want:  "https://token123@api.kokocares.org/keywords",
		},
		{
			name:  "auth with custom host",
			rules: RulesConfig{Auth: "token123", Host: "rules.example.com"},
			want:  "https://token123@rules.example.com/keywords",
		},
		{
			name:  "url is used verbatim",
			rules: RulesConfig{URL: "http://localhost:9000/kw"},
			want:  "http://localhost:9000/kw",
		},
		{
			name:  "rules file has no endpoint",
			rules: RulesConfig{URL: "http://localhost:9000/kw", RulesFile: "rules.json"},
			want:  "",
		},
		{
			name:  "nothing configured",
			rules: RulesConfig{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_StringHidesCredentials(t *testing.T) {
	cfg := NewTestConfig().WithAuth("supersecret").Build()

	s := cfg.String()
	if strings.Contains(s, "supersecret") {
		t.Errorf("String() leaked credentials: %s", s)
	}
	if !strings.Contains(s, "api.kokocares.org") {
		t.Errorf("String() should name the rule host: %s", s)
	}

	file := NewTestConfig().WithRulesFile("/etc/keywords/rules.json").Build()
	if !strings.Contains(file.String(), "file:/etc/keywords/rules.json") {
		t.Errorf("String() = %s, want file source", file.String())
	}
}
