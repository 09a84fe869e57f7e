package matcher

import (
	"strings"

	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/filter"
)

// Result describes the outcome of one evaluation.
type Result struct {
	// Matched is true if an eligible pattern matched.
	Matched bool

	// Index is the position of the matching pattern, or -1.
	Index int

	// Pattern is the matching pattern, or nil.
	Pattern *rules.TaggedPattern

	// Eligible is the number of patterns the filter admitted before evaluation stopped.
	Eligible int

	// Canonical is the preprocessed, lowercased text that was matched.
	Canonical string
}

// Evaluate parses filterExpr and evaluates text against rs.
// It returns a *filter.SyntaxError if the expression is malformed.
func Evaluate(rs *rules.RuleSet, text, filterExpr string) (bool, error) {
	f, err := filter.Parse(filterExpr)
	if err != nil {
		return false, err
	}
	return EvaluateFilter(rs, text, f).Matched, nil
}

// EvaluateFilter evaluates text against rs using an already parsed filter.
func EvaluateFilter(rs *rules.RuleSet, text string, f filter.Filter) Result {
	res := Result{Index: -1, Canonical: Canonicalize(rs, text)}

	for i := 0; i < rs.Len(); i++ {
		p := rs.Pattern(i)
		if !f.Allows(p) {
			continue
		}
		res.Eligible++
		if p.Regex.MatchString(res.Canonical) {
			res.Matched = true
			res.Index = i
			res.Pattern = p
			return res
		}
	}

	return res
}

// Canonicalize deletes every match of the preprocess pattern from text and
// lowercases the result.
func Canonicalize(rs *rules.RuleSet, text string) string {
	return strings.ToLower(rs.Preprocess().ReplaceAllString(text, ""))
}
