package source

import (
	"context"
	"sync"
	"time"
)

// MemorySource is an in-memory source for testing.
type MemorySource struct {
	mu       sync.Mutex
	body     []byte
	ttl      time.Duration
	err      error
	fetches  int
	versions []string
}

// NewMemorySource creates a memory source that serves body with the given ttl.
func NewMemorySource(body []byte, ttl time.Duration) *MemorySource {
	return &MemorySource{
		body: body,
		ttl:  ttl,
	}
}

// Fetch returns the configured body, or the configured error.
func (s *MemorySource) Fetch(ctx context.Context, version string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	s.versions = append(s.versions, version)

	if s.err != nil {
		return nil, s.err
	}

	body := make([]byte, len(s.body))
	copy(body, s.body)
	return &Result{
		Body:      body,
		TTL:       s.ttl,
		FetchedAt: time.Now(),
	}, nil
}

// SetBody replaces the served body and clears any configured error.
func (s *MemorySource) SetBody(body []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
	s.ttl = ttl
	s.err = nil
}

// SetError makes subsequent fetches fail with err.
func (s *MemorySource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Fetches returns the number of Fetch calls so far.
func (s *MemorySource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// Versions returns the version argument of every Fetch call in order.
func (s *MemorySource) Versions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	vs := make([]string, len(s.versions))
	copy(vs, s.versions)
	return vs
}
