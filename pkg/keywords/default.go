package keywords

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kokocares/keywords/pkg/config"
)

// ErrNotConfigured is returned by the package-level functions when the
// environment names no usable rule source.
var ErrNotConfigured = errors.New(CodeAuthMissing.Description())

var (
	defaultOnce   sync.Once
	defaultClient *Client
	defaultErr    error
)

// Default returns the process-wide client built from the environment.
// It is built once; a failure is returned on every call.
func Default() (*Client, error) {
	defaultOnce.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			defaultErr = fmt.Errorf("%w: %w", ErrNotConfigured, err)
			return
		}
		defaultClient, defaultErr = New(cfg)
	})
	return defaultClient, defaultErr
}

// Match matches text using the default client.
func Match(text, filterExpr, version string) (bool, error) {
	c, err := Default()
	if err != nil {
		return false, err
	}
	return c.Match(context.Background(), text, filterExpr, version)
}

// MatchCode matches text using the default client and returns a result code.
func MatchCode(text, filterExpr, version string) Code {
	return Result(Match(text, filterExpr, version))
}
