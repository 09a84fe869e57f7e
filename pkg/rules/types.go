package rules

import "regexp"

// TagKey identifies one of the tags carried by a TaggedPattern.
type TagKey string

const (
	// TagCategory is the taxonomy category of a pattern (e.g. "suicide").
	TagCategory TagKey = "category"

	// TagSeverity is the severity label of a pattern (e.g. "high").
	TagSeverity TagKey = "severity"

	// TagConfidence is the confidence label of a pattern (e.g. "medium").
	TagConfidence TagKey = "confidence"
)

// TagKeys lists every known tag key in a stable order.
var TagKeys = []TagKey{TagCategory, TagSeverity, TagConfidence}

// ParseTagKey resolves a filter key to a TagKey.
// It returns false for keys outside the known vocabulary.
func ParseTagKey(s string) (TagKey, bool) {
	switch TagKey(s) {
	case TagCategory, TagSeverity, TagConfidence:
		return TagKey(s), true
	default:
		return "", false
	}
}

// TaggedPattern is a compiled keyword regex together with its tags.
type TaggedPattern struct {
	// Regex is matched against canonicalized (preprocessed, lowercased) input.
	Regex *regexp.Regexp

	// Category is the taxonomy category.
	Category string

	// Severity is the severity label.
	Severity string

	// Confidence is the confidence label.
	Confidence string
}

// Tag returns the value of the tag identified by key.
// It returns false if key is not a known tag key.
func (p *TaggedPattern) Tag(key TagKey) (string, bool) {
	switch key {
	case TagCategory:
		return p.Category, true
	case TagSeverity:
		return p.Severity, true
	case TagConfidence:
		return p.Confidence, true
	default:
		return "", false
	}
}

// RuleSet is one parsed payload: a preprocess pattern plus an ordered list of
// tagged patterns. A RuleSet is immutable once constructed.
type RuleSet struct {
	version    string
	preprocess *regexp.Regexp
	patterns   []TaggedPattern
}

// NewRuleSet builds a RuleSet from already compiled parts.
// A nil preprocess pattern strips nothing. The patterns slice is copied.
func NewRuleSet(version string, preprocess *regexp.Regexp, patterns []TaggedPattern) *RuleSet {
	if preprocess == nil {
		preprocess = regexp.MustCompile(``)
	}
	ps := make([]TaggedPattern, len(patterns))
	copy(ps, patterns)
	return &RuleSet{
		version:    version,
		preprocess: preprocess,
		patterns:   ps,
	}
}

// Version returns the payload version label, which may be empty.
func (rs *RuleSet) Version() string {
	return rs.version
}

// Preprocess returns the compiled preprocess pattern.
func (rs *RuleSet) Preprocess() *regexp.Regexp {
	return rs.preprocess
}

// Len returns the number of tagged patterns.
func (rs *RuleSet) Len() int {
	return len(rs.patterns)
}

// Pattern returns the i-th tagged pattern in evaluation order.
// The returned pattern is shared and must not be modified.
func (rs *RuleSet) Pattern(i int) *TaggedPattern {
	return &rs.patterns[i]
}

// Patterns returns a copy of the tagged patterns in evaluation order.
func (rs *RuleSet) Patterns() []TaggedPattern {
	ps := make([]TaggedPattern, len(rs.patterns))
	copy(ps, rs.patterns)
	return ps
}
