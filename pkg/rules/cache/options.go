package cache

import (
	"log/slog"
	"time"
)

// Policy selects the behavior after a failed refresh.
type Policy struct {
	// BumpOnFatal pushes the expiry forward by the default TTL after a fatal failure.
	BumpOnFatal bool

	// FallbackToBootstrap serves the stale or bootstrap rule set instead of an error.
	FallbackToBootstrap bool
}

// DefaultPolicy bumps on fatal failures and surfaces every error.
var DefaultPolicy = Policy{BumpOnFatal: true}

// Observer receives cache events, typically to record metrics.
type Observer interface {
	// ObserveLookup records a lookup result: "hit", "miss", "stale",
	// "suppressed" or "forced".
	ObserveLookup(key, result string)

	// ObserveRefresh records a refresh outcome: "success" or a Kind name.
	ObserveRefresh(key, outcome string, duration time.Duration)

	// ObserveEntry records the pattern count of a newly stored entry.
	ObserveEntry(key string, patterns int)
}

// Lookup results passed to Observer.ObserveLookup.
const (
	LookupHit        = "hit"
	LookupMiss       = "miss"
	LookupStale      = "stale"
	LookupSuppressed = "suppressed"
	LookupForced     = "forced"
)

// OutcomeSuccess is passed to Observer.ObserveRefresh for successful refreshes.
const OutcomeSuccess = "success"

type nopObserver struct{}

func (nopObserver) ObserveLookup(string, string)                 {}
func (nopObserver) ObserveRefresh(string, string, time.Duration) {}
func (nopObserver) ObserveEntry(string, int)                     {}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(c *Cache) {
		c.policy = p
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithDefaultTTL sets the duration used to bump expiry after fatal failures.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithObserver registers an observer for cache events.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
