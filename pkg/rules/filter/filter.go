// Package filter parses filter expressions that restrict which tagged patterns
// are eligible to match.
//
// An expression is a sequence of clauses separated by ':'. Each clause has the
// form key=value1,value2:
//
//	category=suicide,selfharm:severity=high
//
// A pattern is eligible when, for every clause, its tag value for the clause key
// is contained in at least one of the allowed values. Containment is substring
// based, so the value "suicideprevention" admits a pattern tagged "suicide".
// Keys outside the known tag vocabulary never match, which makes every pattern
// ineligible. An empty expression has no clauses and admits every pattern.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"kokocares/keywords/pkg/rules"
)

const (
	// ClauseSeparator separates clauses in an expression.
	ClauseSeparator = ":"

	// ValueSeparator separates allowed values within a clause.
	ValueSeparator = ","
)

// ErrSyntax is the sentinel wrapped by every SyntaxError.
var ErrSyntax = errors.New("invalid filter syntax")

// SyntaxError reports a malformed clause.
type SyntaxError struct {
	// Clause is the offending clause text.
	Clause string

	// Position is the zero-based clause index.
	Position int

	// Reason describes what is wrong.
	Reason string
}

// Error returns the error message.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid filter clause %d %q: %s", e.Position, e.Clause, e.Reason)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Clause restricts one tag to a set of allowed values.
type Clause struct {
	// Key is the raw key as written in the expression.
	Key string

	// Values are the allowed values for the key.
	Values []string

	tag   rules.TagKey
	known bool
}

// Known reports whether the clause key is part of the tag vocabulary.
func (c Clause) Known() bool {
	return c.known
}

// allows reports whether the pattern's tag value is contained in an allowed value.
func (c Clause) allows(p *rules.TaggedPattern) bool {
	if !c.known {
		return false
	}
	tag, ok := p.Tag(c.tag)
	if !ok {
		return false
	}
	for _, v := range c.Values {
		if strings.Contains(v, tag) {
			return true
		}
	}
	return false
}

// Filter is a parsed filter expression. The zero value admits every pattern.
type Filter struct {
	clauses []Clause
}

// Parse parses a filter expression.
// It returns a *SyntaxError if any clause lacks the key=value shape.
func Parse(expr string) (Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return Filter{}, nil
	}

	parts := strings.Split(expr, ClauseSeparator)
	clauses := make([]Clause, 0, len(parts))
	for i, part := range parts {
		key, values, ok := strings.Cut(part, "=")
		if !ok {
			return Filter{}, &SyntaxError{Clause: part, Position: i, Reason: "missing '='"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Filter{}, &SyntaxError{Clause: part, Position: i, Reason: "empty key"}
		}

		vals := strings.Split(values, ValueSeparator)
		for j := range vals {
			vals[j] = strings.TrimSpace(vals[j])
		}

		tag, known := rules.ParseTagKey(key)
		clauses = append(clauses, Clause{
			Key:    key,
			Values: vals,
			tag:    tag,
			known:  known,
		})
	}

	return Filter{clauses: clauses}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(expr string) Filter {
	f, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// Empty reports whether the filter has no clauses.
func (f Filter) Empty() bool {
	return len(f.clauses) == 0
}

// Clauses returns a copy of the parsed clauses.
func (f Filter) Clauses() []Clause {
	cs := make([]Clause, len(f.clauses))
	copy(cs, f.clauses)
	return cs
}

// Allows reports whether the pattern satisfies every clause.
func (f Filter) Allows(p *rules.TaggedPattern) bool {
	for _, c := range f.clauses {
		if !c.allows(p) {
			return false
		}
	}
	return true
}

// String renders the filter in canonical form.
func (f Filter) String() string {
	parts := make([]string, len(f.clauses))
	for i, c := range f.clauses {
		parts[i] = c.Key + "=" + strings.Join(c.Values, ValueSeparator)
	}
	return strings.Join(parts, ClauseSeparator)
}
