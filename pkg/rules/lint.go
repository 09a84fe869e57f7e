package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity levels for lint issues.
const (
	LintError   = "error"
	LintWarning = "warning"
)

// LintIssue is a single problem found in a payload.
type LintIssue struct {
	// Level is LintError or LintWarning.
	Level string `json:"level"`

	// Index is the keyword index, or -1 for payload-level issues.
	Index int `json:"index"`

	// Field is the offending field.
	Field string `json:"field"`

	// Message describes the issue.
	Message string `json:"message"`
}

// String formats the issue for terminal output.
func (i LintIssue) String() string {
	if i.Index >= 0 {
		return fmt.Sprintf("%s: keywords[%d].%s: %s", i.Level, i.Index, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Level, i.Field, i.Message)
}

// Lint checks a payload and reports every issue instead of stopping at the first.
// Errors make Parse fail; warnings flag patterns that parse but are unlikely to
// behave as intended (uppercase literals can never match lowercased input, and
// untagged patterns slip through any filter that names their key).
func Lint(data []byte) []LintIssue {
	p, err := decode(data)
	if err != nil {
		return []LintIssue{{Level: LintError, Index: -1, Field: "body", Message: err.Error()}}
	}
	if p.Regexes == nil {
		return []LintIssue{{Level: LintError, Index: -1, Field: "regexes", Message: "missing"}}
	}

	var issues []LintIssue
	if _, err := regexp.Compile(p.Regexes.Preprocess); err != nil {
		issues = append(issues, LintIssue{Level: LintError, Index: -1, Field: "regexes.preprocess", Message: err.Error()})
	}
	if len(p.Regexes.Keywords) == 0 {
		issues = append(issues, LintIssue{Level: LintWarning, Index: -1, Field: "regexes.keywords", Message: "no keywords defined"})
	}

	for i, kw := range p.Regexes.Keywords {
		if kw.Regex == "" {
			issues = append(issues, LintIssue{Level: LintError, Index: i, Field: "regex", Message: "empty pattern matches every input"})
		} else if _, err := regexp.Compile(kw.Regex); err != nil {
			issues = append(issues, LintIssue{Level: LintError, Index: i, Field: "regex", Message: err.Error()})
		} else if hasUppercaseLiteral(kw.Regex) {
			issues = append(issues, LintIssue{Level: LintWarning, Index: i, Field: "regex", Message: "uppercase literal never matches lowercased input"})
		}

		for _, tag := range []struct {
			key   TagKey
			value string
		}{
			{TagCategory, kw.Category},
			{TagSeverity, kw.Severity},
			{TagConfidence, kw.Confidence},
		} {
			if strings.TrimSpace(tag.value) == "" {
				issues = append(issues, LintIssue{Level: LintWarning, Index: i, Field: string(tag.key), Message: "empty tag"})
			}
		}
	}

	return issues
}

// HasErrors reports whether any issue is at error level.
func HasErrors(issues []LintIssue) bool {
	for _, i := range issues {
		if i.Level == LintError {
			return true
		}
	}
	return false
}

// hasUppercaseLiteral reports whether the pattern contains an uppercase letter
// outside of escapes and character classes like \P{L} or [A-Z].
func hasUppercaseLiteral(pattern string) bool {
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			// skip the escaped byte and any \p{..} / \P{..} group
			if i+2 < len(pattern) && (pattern[i+1] == 'p' || pattern[i+1] == 'P') && pattern[i+2] == '{' {
				if end := strings.IndexByte(pattern[i:], '}'); end > 0 {
					i += end
					continue
				}
			}
			i++
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case !inClass && c >= 'A' && c <= 'Z':
			return true
		}
	}
	return false
}
