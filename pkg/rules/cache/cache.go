package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/source"
)

// LatestKey is the cache key used when no version is requested.
const LatestKey = "latest"

// KeyFor maps a requested version to its cache key.
func KeyFor(version string) string {
	if version == "" {
		return LatestKey
	}
	return version
}

// entry is never modified after it is stored; updates replace it.
type entry struct {
	ruleSet   *rules.RuleSet
	expiresAt time.Time
	fetchedAt time.Time
	lastErr   *RefreshError
}

// suppression remembers a fatal failure for a key that has no entry.
type suppression struct {
	err   *RefreshError
	until time.Time
}

// Cache holds rule sets by cache key and refreshes them from a source.
type Cache struct {
	// mu guards every field below and is held across fetches
	mu sync.Mutex

	src       source.Source
	bootstrap *rules.RuleSet

	entries    map[string]*entry
	suppressed map[string]suppression

	policy     Policy
	defaultTTL time.Duration
	now        func() time.Time
	observer   Observer
	logger     *slog.Logger
}

// New creates a cache that refreshes from src.
// The bootstrap rule set is what FallbackToBootstrap serves before any
// successful fetch; it falls back to rules.Default when nil.
func New(src source.Source, bootstrap *rules.RuleSet, opts ...Option) *Cache {
	if bootstrap == nil {
		bootstrap = rules.Default()
	}

	c := &Cache{
		src:        src,
		bootstrap:  bootstrap,
		entries:    make(map[string]*entry),
		suppressed: make(map[string]suppression),
		policy:     DefaultPolicy,
		defaultTTL: source.DefaultTTL,
		now:        time.Now,
		observer:   nopObserver{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the rule set for version, refreshing it when absent or expired.
// Refresh failures are returned as *RefreshError unless the policy falls back.
func (c *Cache) Get(ctx context.Context, version string) (*rules.RuleSet, error) {
	key := KeyFor(version)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	current, ok := c.entries[key]
	if ok && now.Before(current.expiresAt) {
		c.observer.ObserveLookup(key, LookupHit)
		return current.ruleSet, nil
	}

	if !ok {
		if s, found := c.suppressed[key]; found {
			if now.Before(s.until) {
				c.observer.ObserveLookup(key, LookupSuppressed)
				return c.failLocked(current, s.err)
			}
			delete(c.suppressed, key)
		}
		c.observer.ObserveLookup(key, LookupMiss)
	} else {
		c.observer.ObserveLookup(key, LookupStale)
	}

	rs, err := c.refreshLocked(ctx, key, version)
	if err != nil {
		c.recordFailureLocked(ctx, key, current, err)
		return c.failLocked(c.entries[key], err)
	}
	return rs, nil
}

// Refresh fetches the rule set for version regardless of expiry or a
// remembered failure. A failure is always returned as *RefreshError, even
// when the policy falls back; the stale entry and expiry bookkeeping are
// updated exactly as for Get.
func (c *Cache) Refresh(ctx context.Context, version string) (*rules.RuleSet, error) {
	key := KeyFor(version)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.observer.ObserveLookup(key, LookupForced)
	delete(c.suppressed, key)

	rs, err := c.refreshLocked(ctx, key, version)
	if err != nil {
		c.recordFailureLocked(ctx, key, c.entries[key], err)
		return nil, err
	}
	return rs, nil
}

// refreshLocked performs one fetch and parse and stores the result.
func (c *Cache) refreshLocked(ctx context.Context, key, version string) (*rules.RuleSet, *RefreshError) {
	start := time.Now()

	res, err := c.src.Fetch(ctx, version)
	if err != nil {
		rerr := classify(key, err)
		c.observer.ObserveRefresh(key, rerr.Kind.String(), time.Since(start))
		return nil, rerr
	}

	rs, err := rules.Parse(res.Body)
	if err != nil {
		rerr := classify(key, err)
		c.observer.ObserveRefresh(key, rerr.Kind.String(), time.Since(start))
		return nil, rerr
	}

	fetchedAt := c.now()
	c.entries[key] = &entry{
		ruleSet:   rs,
		expiresAt: fetchedAt.Add(res.TTL),
		fetchedAt: fetchedAt,
	}
	delete(c.suppressed, key)

	c.observer.ObserveRefresh(key, OutcomeSuccess, time.Since(start))
	c.observer.ObserveEntry(key, rs.Len())
	c.logger.InfoContext(ctx, "refreshed rules",
		"key", key,
		"version", rs.Version(),
		"patterns", rs.Len(),
		"ttl", res.TTL.String(),
	)

	return rs, nil
}

// recordFailureLocked applies the expiry policy after a failed refresh.
// The error is kept on the stale entry or, for a fatal failure with bumping
// enabled, on a suppression record. Absent keys keep nothing otherwise.
func (c *Cache) recordFailureLocked(ctx context.Context, key string, current *entry, rerr *RefreshError) {
	bumped := rerr.Fatal() && c.policy.BumpOnFatal
	until := c.now().Add(c.defaultTTL)

	switch {
	case current != nil:
		expiresAt := current.expiresAt
		if bumped {
			expiresAt = until
		}
		c.entries[key] = &entry{
			ruleSet:   current.ruleSet,
			expiresAt: expiresAt,
			fetchedAt: current.fetchedAt,
			lastErr:   rerr,
		}
	case bumped:
		c.pruneSuppressedLocked()
		c.suppressed[key] = suppression{err: rerr, until: until}
	}

	c.logger.WarnContext(ctx, "rule refresh failed",
		"key", key,
		"kind", rerr.Kind.String(),
		"retryable", rerr.Retryable(),
		"stale_entry", current != nil,
		"bumped", bumped,
		"error", rerr.Err,
	)
}

// pruneSuppressedLocked drops suppression records that have run out.
func (c *Cache) pruneSuppressedLocked() {
	now := c.now()
	for key, s := range c.suppressed {
		if !now.Before(s.until) {
			delete(c.suppressed, key)
		}
	}
}

// failLocked returns either the error or the fallback rule set, per policy.
func (c *Cache) failLocked(current *entry, rerr *RefreshError) (*rules.RuleSet, error) {
	if !c.policy.FallbackToBootstrap {
		return nil, rerr
	}
	if current != nil {
		return current.ruleSet, nil
	}
	return c.bootstrap, nil
}

// Bootstrap returns the bootstrap rule set.
func (c *Cache) Bootstrap() *rules.RuleSet {
	return c.bootstrap
}

// Policy returns the configured failure policy.
func (c *Cache) Policy() Policy {
	return c.policy
}

// Invalidate marks the entry for version as expired so the next Get refreshes it.
// It also clears any remembered fatal failure. It reports whether anything changed.
func (c *Cache) Invalidate(version string) bool {
	key := KeyFor(version)

	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	if e, ok := c.entries[key]; ok {
		c.entries[key] = &entry{
			ruleSet:   e.ruleSet,
			expiresAt: time.Time{},
			fetchedAt: e.fetchedAt,
			lastErr:   e.lastErr,
		}
		changed = true
	}
	if _, ok := c.suppressed[key]; ok {
		delete(c.suppressed, key)
		changed = true
	}
	return changed
}

// EntryStatus describes one cache key.
type EntryStatus struct {
	Key        string    `json:"key"`
	Version    string    `json:"version,omitempty"`
	Patterns   int       `json:"patterns"`
	FetchedAt  time.Time `json:"fetched_at,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	Stale      bool      `json:"stale"`
	Suppressed bool      `json:"suppressed,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

// Status returns a snapshot of every known key, sorted by key.
// Keys that only have a remembered failure are included with zero patterns.
func (c *Cache) Status() []EntryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]EntryStatus, 0, len(c.entries)+len(c.suppressed))

	for key, e := range c.entries {
		st := EntryStatus{
			Key:       key,
			Version:   e.ruleSet.Version(),
			Patterns:  e.ruleSet.Len(),
			FetchedAt: e.fetchedAt,
			ExpiresAt: e.expiresAt,
			Stale:     !now.Before(e.expiresAt),
		}
		if e.lastErr != nil {
			st.LastError = e.lastErr.Error()
		}
		out = append(out, st)
	}

	for key, s := range c.suppressed {
		if _, ok := c.entries[key]; ok {
			continue
		}
		out = append(out, EntryStatus{
			Key:        key,
			ExpiresAt:  s.until,
			Stale:      true,
			Suppressed: now.Before(s.until),
			LastError:  s.err.Error(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Fresh reports whether at least one entry is present and unexpired.
func (c *Cache) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			return true
		}
	}
	return false
}

