package rules

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default.json
var defaultPayload []byte

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
)

// DefaultPayload returns a copy of the embedded bootstrap payload.
func DefaultPayload() []byte {
	b := make([]byte, len(defaultPayload))
	copy(b, defaultPayload)
	return b
}

// Default returns the rule set compiled from the embedded payload.
// The payload is compiled once; a broken embedded payload panics.
func Default() *RuleSet {
	defaultOnce.Do(func() {
		rs, err := Parse(defaultPayload)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded default payload: %v", err))
		}
		defaultSet = rs
	})
	return defaultSet
}
