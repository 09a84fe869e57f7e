package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/source"
	"kokocares/keywords/pkg/telemetry/logging"
)

const payloadV1 = `{"version":"v1","regexes":{"preprocess":" ","keywords":[
	{"regex":"^kms$","category":"suicide","severity":"high","confidence":"high"}]}}`

const payloadV2 = `{"version":"v2","regexes":{"preprocess":" ","keywords":[
	{"regex":"^kms$","category":"suicide","severity":"high","confidence":"high"},
	{"regex":"thinspo","category":"eating","severity":"medium","confidence":"high"}]}}`

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(src source.Source, clock *fakeClock, opts ...Option) *Cache {
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(src, nil, opts...)
}

func TestKeyFor(t *testing.T) {
	if KeyFor("") != LatestKey {
		t.Errorf("KeyFor(\"\") = %q, want %q", KeyFor(""), LatestKey)
	}
	if KeyFor("2024-06-01") != "2024-06-01" {
		t.Errorf("KeyFor(\"2024-06-01\") = %q", KeyFor("2024-06-01"))
	}
}

func TestCache_GetFetchesOnMiss(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)

	rs, err := c.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if rs.Version() != "v1" {
		t.Errorf("Version() = %q, want v1", rs.Version())
	}
	if src.Fetches() != 1 {
		t.Errorf("Fetches() = %d, want 1", src.Fetches())
	}
}

func TestCache_TTL(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	// Fresh entry: zero fetches.
	clock.Advance(59 * time.Minute)
	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if src.Fetches() != 1 {
		t.Errorf("fresh entry triggered a fetch: Fetches() = %d, want 1", src.Fetches())
	}

	// Expired entry: exactly one fetch.
	src.SetBody([]byte(payloadV2), time.Hour)
	clock.Advance(time.Minute)
	rs, err := c.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if src.Fetches() != 2 {
		t.Errorf("expired entry: Fetches() = %d, want 2", src.Fetches())
	}
	if rs.Version() != "v2" {
		t.Errorf("Version() = %q, want v2 after refresh", rs.Version())
	}
}

func TestCache_VersionsAreSeparateKeys(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	for _, v := range []string{"", "v1", "", "v1", "v2"} {
		if _, err := c.Get(ctx, v); err != nil {
			t.Fatalf("Get(%q) unexpected error: %v", v, err)
		}
	}

	want := []string{"", "v1", "v2"}
	got := src.Versions()
	if len(got) != len(want) {
		t.Fatalf("Versions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Versions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCache_RetryableKeepsStaleEntry(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable, StatusCode: 503})

	_, err := c.Get(ctx, "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) {
		t.Fatalf("Get() error = %v, want *RefreshError", err)
	}
	if rerr.Kind != KindUnavailable || !rerr.Retryable() {
		t.Errorf("RefreshError = %+v, want retryable unavailable", rerr)
	}
	if !errors.Is(err, source.ErrUnavailable) {
		t.Error("errors.Is(err, source.ErrUnavailable) = false")
	}

	// The stale entry is not bumped: the very next call fetches again.
	if _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("Get() expected error while source is down")
	}
	if src.Fetches() != 3 {
		t.Errorf("Fetches() = %d, want 3 (no bump on retryable failure)", src.Fetches())
	}

	status := c.Status()
	if len(status) != 1 || !status[0].Stale || status[0].Patterns != 1 || status[0].LastError == "" {
		t.Errorf("Status() = %+v, want one stale entry with last error", status)
	}
}

func TestCache_InvalidPayloadIsRetryable(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(`{"nope":`), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	_, err := c.Get(ctx, "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) {
		t.Fatalf("Get() error = %v, want *RefreshError", err)
	}
	if rerr.Kind != KindInvalidPayload {
		t.Errorf("Kind = %v, want %v", rerr.Kind, KindInvalidPayload)
	}
	if !errors.Is(err, rules.ErrInvalidPayload) {
		t.Error("errors.Is(err, rules.ErrInvalidPayload) = false")
	}

	if _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("Get() expected error for invalid payload")
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2 (invalid payload retries immediately)", src.Fetches())
	}
}

func TestCache_FatalBumpsStaleEntry(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock, WithDefaultTTL(30*time.Minute))
	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidCredentials, StatusCode: 401})

	_, err := c.Get(ctx, "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) || rerr.Kind != KindInvalidCredentials {
		t.Fatalf("Get() error = %v, want invalid credentials", err)
	}
	if !rerr.Fatal() {
		t.Error("invalid credentials should be fatal")
	}

	// Bumped: served from the stale entry without a fetch.
	rs, err := c.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get() after bump unexpected error: %v", err)
	}
	if rs.Version() != "v1" {
		t.Errorf("Version() = %q, want stale v1", rs.Version())
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2 (bumped entry must not refetch)", src.Fetches())
	}

	// After the default TTL the refresh is attempted again.
	clock.Advance(30 * time.Minute)
	if _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("Get() expected error after bump window")
	}
	if src.Fetches() != 3 {
		t.Errorf("Fetches() = %d, want 3", src.Fetches())
	}
}

func TestCache_FatalWithoutBump(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock, WithPolicy(Policy{BumpOnFatal: false}))
	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidURL})

	for i := 0; i < 3; i++ {
		if _, err := c.Get(ctx, ""); !errors.Is(err, source.ErrInvalidURL) {
			t.Fatalf("Get() error = %v, want ErrInvalidURL", err)
		}
	}
	if src.Fetches() != 4 {
		t.Errorf("Fetches() = %d, want 4 (no bump means every call retries)", src.Fetches())
	}
}

func TestCache_FatalWithoutEntryIsSuppressed(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidURL})
	c := newTestCache(src, clock)
	ctx := context.Background()

	_, first := c.Get(ctx, "")
	if !errors.Is(first, source.ErrInvalidURL) {
		t.Fatalf("Get() error = %v, want ErrInvalidURL", first)
	}

	_, second := c.Get(ctx, "")
	if second != first {
		t.Errorf("suppressed Get() returned a different error: %v", second)
	}
	if src.Fetches() != 1 {
		t.Errorf("Fetches() = %d, want 1 while suppressed", src.Fetches())
	}

	status := c.Status()
	if len(status) != 1 || !status[0].Suppressed {
		t.Errorf("Status() = %+v, want one suppressed key", status)
	}

	clock.Advance(source.DefaultTTL)
	src.SetBody([]byte(payloadV1), time.Hour)
	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() after suppression window unexpected error: %v", err)
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2", src.Fetches())
	}
}

func TestCache_TransientOutageThenRecovery(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable})
	c := newTestCache(src, clock)
	ctx := context.Background()

	_, err := c.Get(ctx, "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) || rerr.Kind != KindUnavailable {
		t.Fatalf("Get() error = %v, want unavailable", err)
	}

	src.SetBody([]byte(payloadV1), time.Hour)
	rs, err := c.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get() after recovery unexpected error: %v", err)
	}
	if rs.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rs.Len())
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want exactly 2", src.Fetches())
	}
}

func TestCache_FallbackToBootstrap(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable})

	bootstrap, err := rules.Parse([]byte(`{"version":"boot","regexes":{"preprocess":"","keywords":[]}}`))
	if err != nil {
		t.Fatalf("rules.Parse() unexpected error: %v", err)
	}
	c := New(src, bootstrap, WithClock(clock.Now), WithPolicy(Policy{BumpOnFatal: true, FallbackToBootstrap: true}))
	ctx := context.Background()

	rs, err := c.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get() with fallback returned error: %v", err)
	}
	if rs != bootstrap {
		t.Error("Get() should return the bootstrap rule set when no entry exists")
	}

	src.SetBody([]byte(payloadV1), time.Hour)
	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable})
	rs, err = c.Get(ctx, "")
	if err != nil {
		t.Fatalf("Get() with fallback returned error: %v", err)
	}
	if rs.Version() != "v1" {
		t.Errorf("Version() = %q, want stale v1 preferred over bootstrap", rs.Version())
	}
}

func TestCache_DefaultBootstrap(t *testing.T) {
	c := New(source.NewMemorySource(nil, 0), nil)
	if c.Bootstrap() != rules.Default() {
		t.Error("nil bootstrap should default to rules.Default()")
	}
	if c.Policy() != DefaultPolicy {
		t.Errorf("Policy() = %+v, want %+v", c.Policy(), DefaultPolicy)
	}
}

func TestCache_Invalidate(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	if c.Invalidate("") {
		t.Error("Invalidate() on empty cache reported a change")
	}

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if !c.Fresh() {
		t.Error("Fresh() = false after successful fetch")
	}
	if !c.Invalidate("") {
		t.Error("Invalidate() did not report a change")
	}
	if c.Fresh() {
		t.Error("Fresh() = true after Invalidate()")
	}
	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2 after invalidation", src.Fetches())
	}
}

func TestCache_FailedLookupsOfAbsentKeysKeepNoState(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		policy Policy
	}{
		{"unavailable", &source.FetchError{Kind: source.KindUnavailable, StatusCode: 404}, DefaultPolicy},
		{"invalid payload", nil, DefaultPolicy},
		{"fatal without bump", &source.FetchError{Kind: source.KindInvalidCredentials, StatusCode: 401}, Policy{}},
		{"unavailable with fallback", &source.FetchError{Kind: source.KindUnavailable}, Policy{FallbackToBootstrap: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			src := source.NewMemorySource([]byte(`garbage`), time.Hour)
			if tt.err != nil {
				src.SetError(tt.err)
			}
			c := newTestCache(src, clock, WithPolicy(tt.policy))
			ctx := context.Background()

			for i := 0; i < 1000; i++ {
				c.Get(ctx, fmt.Sprintf("v%d", i))
			}

			if len(c.entries) != 0 || len(c.suppressed) != 0 {
				t.Errorf("entries=%d suppressed=%d, want none", len(c.entries), len(c.suppressed))
			}
			if status := c.Status(); len(status) != 0 {
				t.Errorf("Status() has %d keys, want 0", len(status))
			}
		})
	}
}

func TestCache_ExpiredSuppressionsArePruned(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidURL})
	c := newTestCache(src, clock)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		c.Get(ctx, fmt.Sprintf("v%d", i))
	}
	if len(c.suppressed) != 100 {
		t.Fatalf("suppressed = %d, want 100", len(c.suppressed))
	}

	clock.Advance(source.DefaultTTL)
	c.Get(ctx, "next")
	if len(c.suppressed) != 1 {
		t.Errorf("suppressed = %d after the window, want 1", len(c.suppressed))
	}
}

func TestCache_StaleEntryKeepsLastError(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock)
	ctx := context.Background()

	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable, StatusCode: 503})
	c.Get(ctx, "")

	c.Invalidate("")
	status := c.Status()
	if len(status) != 1 || status[0].LastError == "" {
		t.Fatalf("Status() = %+v, want last error kept across Invalidate", status)
	}

	src.SetBody([]byte(payloadV1), time.Hour)
	if _, err := c.Get(ctx, ""); err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if status := c.Status(); status[0].LastError != "" {
		t.Errorf("LastError = %q after success, want empty", status[0].LastError)
	}
}

func TestCache_RefreshSurfacesErrorUnderFallback(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV1), time.Hour)
	c := newTestCache(src, clock, WithPolicy(Policy{BumpOnFatal: true, FallbackToBootstrap: true}))
	ctx := context.Background()

	if _, err := c.Refresh(ctx, ""); err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}

	src.SetError(&source.FetchError{Kind: source.KindUnavailable, StatusCode: 503})
	rs, err := c.Refresh(ctx, "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) || rerr.Kind != KindUnavailable {
		t.Fatalf("Refresh() error = %v, want unavailable", err)
	}
	if rs != nil {
		t.Error("Refresh() returned a rule set alongside the error")
	}
	if src.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2", src.Fetches())
	}

	// Unexpired entry is still served by Get.
	rs, err = c.Get(ctx, "")
	if err != nil || rs.Version() != "v1" {
		t.Errorf("Get() = %v, %v; want cached v1", rs, err)
	}
}

func TestCache_RefreshIgnoresSuppression(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidCredentials, StatusCode: 403})
	c := newTestCache(src, clock)
	ctx := context.Background()

	c.Get(ctx, "")
	src.SetBody([]byte(payloadV1), time.Hour)
	if _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("Get() during suppression returned no error")
	}
	if src.Fetches() != 1 {
		t.Fatalf("Fetches() = %d, want 1 while suppressed", src.Fetches())
	}

	rs, err := c.Refresh(ctx, "")
	if err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}
	if rs.Version() != "v1" || src.Fetches() != 2 {
		t.Errorf("Refresh() version=%q fetches=%d, want v1 and 2", rs.Version(), src.Fetches())
	}
}

func TestCache_FailureLogCarriesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	src := source.NewMemorySource(nil, time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindUnavailable, StatusCode: 503})
	c := newTestCache(src, newFakeClock(), WithLogger(logger))

	ctx := logging.WithRequestID(context.Background(), "req-42")
	if _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("Get() returned no error")
	}

	out := buf.String()
	if !strings.Contains(out, `"msg":"rule refresh failed"`) || !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("log output = %s, want failure with request_id", out)
	}
}

// blockingSource holds every fetch until release is closed.
type blockingSource struct {
	mu      sync.Mutex
	fetches int
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSource) Fetch(ctx context.Context, version string) (*source.Result, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()
	s.once.Do(func() { close(s.started) })
	<-s.release
	return &source.Result{Body: []byte(payloadV1), TTL: time.Hour}, nil
}

func TestCache_ConcurrentGetsShareRefresh(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	c := New(src, nil)
	ctx := context.Background()

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(ctx, ""); err != nil {
				errs <- err
			}
		}()
	}

	<-src.started
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Get() unexpected error: %v", err)
	}
	if src.fetches != 1 {
		t.Errorf("fetches = %d, want 1 for concurrent callers", src.fetches)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	lookups  []string
	outcomes []string
	entries  []int
}

func (o *recordingObserver) ObserveLookup(key, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, result)
}

func (o *recordingObserver) ObserveRefresh(key, outcome string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObserveEntry(key string, patterns int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, patterns)
}

func TestCache_Observer(t *testing.T) {
	clock := newFakeClock()
	src := source.NewMemorySource([]byte(payloadV2), time.Hour)
	obs := &recordingObserver{}
	c := newTestCache(src, clock, WithObserver(obs))
	ctx := context.Background()

	c.Get(ctx, "")
	c.Get(ctx, "")
	clock.Advance(2 * time.Hour)
	src.SetError(&source.FetchError{Kind: source.KindInvalidCredentials})
	c.Get(ctx, "")
	src.SetBody([]byte(`garbage`), time.Hour)
	c.Get(ctx, "v9")

	wantLookups := []string{LookupMiss, LookupHit, LookupStale, LookupMiss}
	wantOutcomes := []string{OutcomeSuccess, "invalid_credentials", "invalid_payload"}

	if len(obs.lookups) != len(wantLookups) {
		t.Fatalf("lookups = %v, want %v", obs.lookups, wantLookups)
	}
	for i := range wantLookups {
		if obs.lookups[i] != wantLookups[i] {
			t.Errorf("lookups[%d] = %q, want %q", i, obs.lookups[i], wantLookups[i])
		}
	}
	if len(obs.outcomes) != len(wantOutcomes) {
		t.Fatalf("outcomes = %v, want %v", obs.outcomes, wantOutcomes)
	}
	for i := range wantOutcomes {
		if obs.outcomes[i] != wantOutcomes[i] {
			t.Errorf("outcomes[%d] = %q, want %q", i, obs.outcomes[i], wantOutcomes[i])
		}
	}
	if len(obs.entries) != 1 || obs.entries[0] != 2 {
		t.Errorf("entries = %v, want [2]", obs.entries)
	}
}

func TestCache_PlainSourceErrorIsUnavailable(t *testing.T) {
	src := source.NewMemorySource(nil, 0)
	src.SetError(errors.New("boom"))
	c := New(src, nil)

	_, err := c.Get(context.Background(), "")
	var rerr *RefreshError
	if !errors.As(err, &rerr) || rerr.Kind != KindUnavailable {
		t.Fatalf("Get() error = %v, want unavailable", err)
	}
}
