package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// FileSource serves a payload file from disk. The file is re-read on every fetch,
// so edits are picked up at the next refresh.
type FileSource struct {
	path   string
	ttl    time.Duration
	logger *slog.Logger
}

// NewFileSource creates a file source. A non-positive ttl uses DefaultTTL.
func NewFileSource(path string, ttl time.Duration, logger *slog.Logger) *FileSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		ttl:    ttl,
		logger: logger,
	}
}

// Fetch reads the payload file. The version selector is ignored.
func (s *FileSource) Fetch(ctx context.Context, version string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Kind: KindUnavailable, Err: err}
	}

	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &FetchError{Kind: KindUnavailable, Err: fmt.Errorf("read %q: %w", s.path, err)}
	}
	if len(body) > MaxBodyBytes {
		return nil, &FetchError{Kind: KindUnavailable, Err: fmt.Errorf("%q exceeds %d bytes", s.path, MaxBodyBytes)}
	}

	s.logger.Debug("loaded rules from file",
		"path", s.path,
		"bytes", len(body),
	)

	return &Result{
		Body:      body,
		TTL:       s.ttl,
		FetchedAt: time.Now(),
	}, nil
}
