package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is used when a response carries no usable max-age directive.
const DefaultTTL = time.Hour

// Source fetches raw rule payloads.
type Source interface {
	// Fetch retrieves the payload for version. An empty version requests the latest rules.
	// Errors are *FetchError values.
	Fetch(ctx context.Context, version string) (*Result, error)
}

// Result is a successfully fetched payload.
type Result struct {
	// Body is the raw, unparsed payload.
	Body []byte

	// TTL is how long the payload may be served before it is stale.
	TTL time.Duration

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time
}

// Kind classifies fetch failures.
type Kind int

const (
	// KindUnavailable is a transient transport or server failure.
	KindUnavailable Kind = iota

	// KindInvalidURL means the endpoint itself is unusable.
	KindInvalidURL

	// KindInvalidCredentials means the service rejected the caller's credentials.
	KindInvalidCredentials
)

// String returns the kind name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unavailable"
	}
}

// Sentinel errors matching each Kind through errors.Is.
var (
	ErrUnavailable        = errors.New("rule source unavailable")
	ErrInvalidURL         = errors.New("invalid rule source url")
	ErrInvalidCredentials = errors.New("invalid rule source credentials")
)

// FetchError is returned by every Source on failure.
type FetchError struct {
	// Kind classifies the failure.
	Kind Kind

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error returns the error message.
func (e *FetchError) Error() string {
	msg := e.sentinel().Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *FetchError) Is(target error) bool {
	return target == e.sentinel()
}

// Fatal reports whether retrying the same request would fail the same way.
func (e *FetchError) Fatal() bool {
	return e.Kind == KindInvalidURL || e.Kind == KindInvalidCredentials
}

func (e *FetchError) sentinel() error {
	switch e.Kind {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	default:
		return ErrUnavailable
	}
}

// IsFatal reports whether err is a fatal *FetchError.
func IsFatal(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Fatal()
}
