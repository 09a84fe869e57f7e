// Package rules defines the immutable rule set that the match engine evaluates.
//
// A rule set is parsed from a JSON payload served by the remote rule service (or
// bundled with the binary as a bootstrap default):
//
//	{
//	  "version": "2024-06-01",
//	  "regexes": {
//	    "preprocess": "[^\\p{L}\\p{N}]+",
//	    "keywords": [
//	      {"regex": "^kms$", "category": "suicide", "severity": "high", "confidence": "high"}
//	    ]
//	  }
//	}
//
// The preprocess pattern is applied to raw input before matching: every match of it
// is deleted and the result is lowercased. Keyword patterns are evaluated in payload
// order, so authors must write them in lowercase and in priority order.
//
// # Tags
//
// Every pattern carries three tags drawn from a small fixed vocabulary. Tags are looked
// up through the closed TagKey enumeration; filter keys outside that enumeration never
// resolve, which makes patterns ineligible under such a filter.
//
// # Bootstrap
//
// Default returns the rule set built from the payload embedded in this package. The
// rule cache holds it so a caller always has some answer available, even before the
// first successful fetch.
//
// # Thread Safety
//
// RuleSet values are never mutated after Parse returns and may be shared freely
// between goroutines.
package rules
