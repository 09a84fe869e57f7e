package cache

import (
	"errors"
	"fmt"

	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/source"
)

// Kind classifies refresh failures.
type Kind int

const (
	// KindUnavailable means the source could not be reached or answered with an error.
	KindUnavailable Kind = iota

	// KindInvalidURL means the source endpoint is unusable.
	KindInvalidURL

	// KindInvalidCredentials means the source rejected the credentials.
	KindInvalidCredentials

	// KindInvalidPayload means the fetch succeeded but the body could not be parsed.
	KindInvalidPayload
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidPayload:
		return "invalid_payload"
	default:
		return "unavailable"
	}
}

// RefreshError is returned by Get when a refresh fails.
type RefreshError struct {
	// Key is the cache key that was being refreshed.
	Key string

	// Kind classifies the failure.
	Kind Kind

	// Err is the source or parse error.
	Err error
}

// Error returns the error message.
func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh rules %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the next call should try the refresh again.
func (e *RefreshError) Retryable() bool {
	return e.Kind == KindUnavailable || e.Kind == KindInvalidPayload
}

// Fatal reports whether the failure will recur on an identical retry.
func (e *RefreshError) Fatal() bool {
	return !e.Retryable()
}

// classify turns a source or parse error into a RefreshError.
func classify(key string, err error) *RefreshError {
	var fe *source.FetchError
	switch {
	case errors.Is(err, rules.ErrInvalidPayload):
		return &RefreshError{Key: key, Kind: KindInvalidPayload, Err: err}
	case errors.As(err, &fe):
		kind := KindUnavailable
		switch fe.Kind {
		case source.KindInvalidURL:
			kind = KindInvalidURL
		case source.KindInvalidCredentials:
			kind = KindInvalidCredentials
		}
		return &RefreshError{Key: key, Kind: kind, Err: err}
	default:
		return &RefreshError{Key: key, Kind: KindUnavailable, Err: err}
	}
}
