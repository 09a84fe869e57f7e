package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPayload is the sentinel wrapped by every ParseError.
var ErrInvalidPayload = errors.New("invalid rule payload")

// Payload is the wire schema of a rule payload.
type Payload struct {
	// Version is an optional label assigned by the rule service.
	Version string `json:"version,omitempty"`

	// Regexes holds the preprocess pattern and the keyword list.
	Regexes *RegexesPayload `json:"regexes"`
}

// RegexesPayload is the "regexes" object of a Payload.
type RegexesPayload struct {
	Preprocess string           `json:"preprocess"`
	Keywords   []KeywordPayload `json:"keywords"`
}

// KeywordPayload is a single tagged keyword pattern on the wire.
type KeywordPayload struct {
	Regex      string `json:"regex"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence"`
}

// ParseError reports why a payload could not be turned into a RuleSet.
type ParseError struct {
	// Index is the keyword index that failed, or -1 for payload-level failures.
	Index int

	// Field names the offending field (e.g. "regexes.preprocess").
	Field string

	// Cause is the underlying decode or compile error.
	Cause error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid rule payload: keyword %d %s: %v", e.Index, e.Field, e.Cause)
	}
	return fmt.Sprintf("invalid rule payload: %s: %v", e.Field, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidPayload.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// Parse decodes a JSON payload and compiles it into a RuleSet.
// Keyword order is preserved. Any decode or compile failure yields a *ParseError.
func Parse(data []byte) (*RuleSet, error) {
	p, err := decode(data)
	if err != nil {
		return nil, err
	}
	return Compile(p)
}

// Compile turns a decoded Payload into a RuleSet.
func Compile(p *Payload) (*RuleSet, error) {
	if p.Regexes == nil {
		return nil, &ParseError{Index: -1, Field: "regexes", Cause: errors.New("missing")}
	}

	preprocess, err := regexp.Compile(p.Regexes.Preprocess)
	if err != nil {
		return nil, &ParseError{Index: -1, Field: "regexes.preprocess", Cause: err}
	}

	patterns := make([]TaggedPattern, 0, len(p.Regexes.Keywords))
	for i, kw := range p.Regexes.Keywords {
		re, err := regexp.Compile(kw.Regex)
		if err != nil {
			return nil, &ParseError{Index: i, Field: "regex", Cause: err}
		}
		patterns = append(patterns, TaggedPattern{
			Regex:      re,
			Category:   kw.Category,
			Severity:   kw.Severity,
			Confidence: kw.Confidence,
		})
	}

	return &RuleSet{
		version:    p.Version,
		preprocess: preprocess,
		patterns:   patterns,
	}, nil
}

// decode unmarshals a payload, rejecting trailing data after the JSON document.
func decode(data []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, &ParseError{Index: -1, Field: "body", Cause: err}
	}
	if dec.More() {
		return nil, &ParseError{Index: -1, Field: "body", Cause: errors.New("unexpected data after JSON document")}
	}
	return &p, nil
}
