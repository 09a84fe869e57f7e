// Package source fetches rule payloads for the rule cache.
//
// A Source returns the raw payload body together with a time-to-live hint. It does
// not parse the body and never touches cache state; parsing and the failure policy
// belong to the cache.
//
// # HTTP Source
//
// HTTPSource performs a GET against the configured endpoint:
//
//	src := source.NewHTTPSource(source.HTTPConfig{
//	    Endpoint: "https://token@api.kokocares.org/keywords",
//	    Timeout:  30 * time.Second,
//	})
//	res, err := src.Fetch(ctx, "2024-06-01")
//
// Failures are classified into a FetchError kind:
//
//   - KindInvalidURL: the endpoint cannot be parsed or is not http(s) (fatal)
//   - KindInvalidCredentials: the service answered 401 or 403 (fatal)
//   - KindUnavailable: any other transport failure or non-2xx status (retryable)
//
// The TTL is taken from the max-age directive of the Cache-Control response header,
// falling back to DefaultTTL when the header is absent or unparsable.
//
// # File and Memory Sources
//
// FileSource reads a payload from disk on every fetch, for offline deployments.
// MemorySource returns a fixed result and counts fetches; it is meant for tests.
package source
