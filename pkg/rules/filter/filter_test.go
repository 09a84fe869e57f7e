package filter

import (
	"errors"
	"testing"

	"kokocares/keywords/pkg/rules"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		wantErr     bool
		wantClauses int
		wantString  string
	}{
		{name: "empty", expr: "", wantClauses: 0},
		{name: "whitespace only", expr: "   ", wantClauses: 0},
		{name: "single clause", expr: "category=suicide", wantClauses: 1, wantString: "category=suicide"},
		{name: "multiple values", expr: "category=suicide,eating", wantClauses: 1, wantString: "category=suicide,eating"},
		{name: "combined", expr: "category=suicide:severity=high", wantClauses: 2, wantString: "category=suicide:severity=high"},
		{name: "trims whitespace", expr: " category = suicide , eating ", wantClauses: 1, wantString: "category=suicide,eating"},
		{name: "unknown key parses", expr: "language=en", wantClauses: 1, wantString: "language=en"},
		{name: "missing equals", expr: "category", wantErr: true},
		{name: "missing equals in second clause", expr: "category=suicide:severity", wantErr: true},
		{name: "empty key", expr: "=high", wantErr: true},
		{name: "empty segment", expr: "category=a::severity=b", wantErr: true},
		{name: "trailing separator", expr: "category=a:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				if !errors.Is(err, ErrSyntax) {
					t.Errorf("errors.Is(err, ErrSyntax) = false for %v", err)
				}
				var se *SyntaxError
				if !errors.As(err, &se) {
					t.Errorf("Parse() error = %T, want *SyntaxError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if got := len(f.Clauses()); got != tt.wantClauses {
				t.Errorf("clauses = %d, want %d", got, tt.wantClauses)
			}
			if f.Empty() != (tt.wantClauses == 0) {
				t.Errorf("Empty() = %v, want %v", f.Empty(), tt.wantClauses == 0)
			}
			if f.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", f.String(), tt.wantString)
			}
		})
	}
}

func TestSyntaxError_Position(t *testing.T) {
	_, err := Parse("category=a:severity=b:confidence")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Parse() error = %v, want *SyntaxError", err)
	}
	if se.Position != 2 {
		t.Errorf("Position = %d, want 2", se.Position)
	}
	if se.Clause != "confidence" {
		t.Errorf("Clause = %q, want %q", se.Clause, "confidence")
	}
}

func TestFilter_Allows(t *testing.T) {
	high := &rules.TaggedPattern{Category: "suicide", Severity: "high", Confidence: "high"}
	medium := &rules.TaggedPattern{Category: "suicide", Severity: "medium", Confidence: "low"}

	tests := []struct {
		name    string
		expr    string
		pattern *rules.TaggedPattern
		want    bool
	}{
		{"empty filter admits all", "", high, true},
		{"category match", "category=suicide", high, true},
		{"category mismatch", "category=eating", high, false},
		{"one of several values", "category=eating,suicide", high, true},
		{"combined match", "category=suicide:severity=high", high, true},
		{"combined partial mismatch", "category=suicide:severity=high", medium, false},
		{"confidence", "confidence=low", medium, true},
		{"unknown key excludes", "language=en", high, false},
		{"unknown key excludes even with known clauses", "category=suicide:language=en", high, false},
		{"substring superset value admits shorter tag", "category=suicideprevention", high, true},
		{"shorter value does not admit longer tag", "category=sui", high, false},
		{"keys are case sensitive", "Category=suicide", high, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := MustParse(tt.expr)
			if got := f.Allows(tt.pattern); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClause_Known(t *testing.T) {
	f := MustParse("category=a:language=b")
	cs := f.Clauses()
	if !cs[0].Known() {
		t.Error("category should be a known key")
	}
	if cs[1].Known() {
		t.Error("language should not be a known key")
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse() did not panic on malformed expression")
		}
	}()
	MustParse("category")
}
