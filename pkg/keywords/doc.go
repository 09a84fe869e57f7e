// Package keywords is the entry point for matching text against the
// sensitive-keyword rule set.
//
// A Client owns one rule cache and answers match queries from it:
//
//	client, err := keywords.New(cfg)
//	if err != nil {
//	    return err
//	}
//	matched, err := client.Match(ctx, text, "category=suicide,selfharm", "")
//
// Callers that need the stable integer result codes of the language bindings
// use Result or MatchCode. Code.Description returns the user facing message
// for each failure.
//
// The package-level Match builds a default client from KOKO_KEYWORDS_URL or
// KOKO_KEYWORDS_AUTH on first use. If that fails, every later call returns the
// same error.
package keywords
