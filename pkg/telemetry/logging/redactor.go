package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Attribute keys whose values are query text and are never logged verbatim.
var textKeys = map[string]bool{
	"text":  true,
	"input": true,
}

// Substrings that mark a key as holding a credential.
var sensitiveKeys = []string{
	"password", "passwd",
	"secret", "token",
	"auth", "authorization",
	"api_key", "apikey",
}

// userinfoPattern matches the userinfo of an absolute URL.
var userinfoPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.\-]*://)[^/@\s]+@`)

// bearerPattern matches bearer tokens in header dumps.
var bearerPattern = regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`)

// Redactor masks query text and credentials in slog attributes.
type Redactor struct{}

// NewRedactor creates a Redactor.
func NewRedactor() *Redactor {
	return &Redactor{}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr function.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.SourceKey) {
		return a
	}

	key := strings.ToLower(a.Key)
	if textKeys[key] {
		return slog.String(a.Key, RedactText(a.Value.String()))
	}
	if isSensitiveKey(key) {
		return slog.String(a.Key, RedactSecret(a.Value.String()))
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case error:
			return slog.String(a.Key, r.RedactString(v.Error()))
		case fmt.Stringer:
			return slog.String(a.Key, r.RedactString(v.String()))
		}
	}
	return a
}

// RedactString masks URL userinfo and bearer tokens inside value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	value = userinfoPattern.ReplaceAllString(value, "${1}xxxxx@")
	return bearerPattern.ReplaceAllString(value, "Bearer ***")
}

func isSensitiveKey(key string) bool {
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// RedactText replaces query text with its length.
func RedactText(text string) string {
	return fmt.Sprintf("[redacted len=%d]", len(text))
}

// RedactSecret redacts a credential, keeping a short prefix.
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "***"
}
