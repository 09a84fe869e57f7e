package health

import (
	"context"
	"errors"
)

// ErrNoFreshRules is reported when the rule cache holds no unexpired entry.
var ErrNoFreshRules = errors.New("no fresh rule set cached")

// FreshnessReporter is satisfied by the rule cache.
type FreshnessReporter interface {
	Fresh() bool
}

// RulesCheck fails until the cache holds at least one unexpired rule set.
func RulesCheck(r FreshnessReporter) CheckFunc {
	return func(ctx context.Context) error {
		if !r.Fresh() {
			return ErrNoFreshRules
		}
		return nil
	}
}
