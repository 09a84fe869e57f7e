// Package cache holds compiled rule sets keyed by requested version and decides
// when to refresh them from a source.
//
// # Lookup
//
// Get resolves a version to a cache key (an empty version maps to "latest") and
// then:
//
//   - returns the entry without I/O when it exists and has not expired
//   - fetches and parses a new payload when the entry is absent or expired
//
// A successful refresh replaces the entry wholesale with the new rule set and an
// expiry of now plus the fetched TTL. At most one fetch is made per Get; the
// next retry happens on a later call.
//
// # Failure Policy
//
// Refresh failures fall into two classes:
//
//   - Fatal (invalid url, invalid credentials): the error is returned and, with
//     Policy.BumpOnFatal, the entry's expiry is pushed forward by the default TTL
//     so callers keep being served the stale rule set without a fetch per call.
//     When there is no entry to bump, the error itself is remembered for the
//     default TTL and returned without I/O until the window ends.
//   - Retryable (source unavailable, unparsable payload): the error is returned
//     and the entry is left as it was, so the next call fetches again.
//
// With Policy.FallbackToBootstrap the caller receives the stale rule set, or the
// bootstrap rule set when there is none, instead of the error. The failure is
// still logged and reported to the Observer.
//
// # Concurrency
//
// A single mutex guards all state and is held across the fetch, so concurrent
// callers for a stale key wait for the one in-flight refresh instead of fetching
// again.
package cache
