package matcher

import (
	"errors"
	"regexp"
	"testing"

	"kokocares/keywords/pkg/rules"
	"kokocares/keywords/pkg/rules/filter"
)

func mustRuleSet(t *testing.T, payload string) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("rules.Parse() unexpected error: %v", err)
	}
	return rs
}

const kmsPayload = `{"regexes":{"preprocess":" ","keywords":[
	{"regex":"^kms$","category":"suicide","severity":"high","confidence":"high"}]}}`

const severityPayload = `{"regexes":{"preprocess":" ","keywords":[
	{"regex":"^kms$","category":"suicide","severity":"high","confidence":"high"},
	{"regex":"^unalive$","category":"suicide","severity":"medium","confidence":"high"}]}}`

func TestEvaluate(t *testing.T) {
	kms := mustRuleSet(t, kmsPayload)
	sev := mustRuleSet(t, severityPayload)

	tests := []struct {
		name   string
		rs     *rules.RuleSet
		text   string
		filter string
		want   bool
	}{
		{"basic match after stripping spaces", kms, "k m s", "", true},
		{"case insensitive via lowercasing", kms, "K M S", "", true},
		{"no match", kms, "kmsx", "", false},
		{"filtered exclusion", kms, "k m s", "category=eating", false},
		{"filtered inclusion", kms, "kms", "category=suicide", true},
		{"substring sharp edge", kms, "kms", "category=suicideprevention", true},
		{"unknown key excludes", kms, "kms", "language=en", false},
		{"combined filter matches first", sev, "kms", "category=suicide:severity=high", true},
		{"combined filter excludes second", sev, "unalive", "category=suicide:severity=high", false},
		{"second pattern without filter", sev, "un alive", "", true},
		{"empty text", kms, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.rs, tt.text, tt.filter)
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q, %q) = %v, want %v", tt.text, tt.filter, got, tt.want)
			}
		})
	}
}

func TestEvaluate_MalformedFilter(t *testing.T) {
	rs := mustRuleSet(t, kmsPayload)

	got, err := Evaluate(rs, "kms", "category")
	if !errors.Is(err, filter.ErrSyntax) {
		t.Fatalf("Evaluate() error = %v, want filter.ErrSyntax", err)
	}
	if got {
		t.Error("Evaluate() returned true alongside an error")
	}
}

func TestEvaluate_EmptyFilterIgnoresTags(t *testing.T) {
	// With no filter, the result only depends on whether any regex matches.
	rs := mustRuleSet(t, `{"regexes":{"preprocess":"","keywords":[
		{"regex":"alpha","category":"","severity":"","confidence":""},
		{"regex":"beta","category":"x","severity":"y","confidence":"z"}]}}`)

	for _, text := range []string{"alpha", "beta", "alphabeta"} {
		if ok, _ := Evaluate(rs, text, ""); !ok {
			t.Errorf("Evaluate(%q, \"\") = false, want true", text)
		}
	}
	if ok, _ := Evaluate(rs, "gamma", ""); ok {
		t.Error("Evaluate(\"gamma\", \"\") = true, want false")
	}
}

func TestEvaluateFilter_FirstMatchWins(t *testing.T) {
	rs := mustRuleSet(t, `{"regexes":{"preprocess":"","keywords":[
		{"regex":"nomatch","category":"a"},
		{"regex":"kms","category":"first"},
		{"regex":"k","category":"second"}]}}`)

	res := EvaluateFilter(rs, "kms", filter.Filter{})
	if !res.Matched {
		t.Fatal("EvaluateFilter() did not match")
	}
	if res.Index != 1 {
		t.Errorf("Index = %d, want 1", res.Index)
	}
	if res.Pattern.Category != "first" {
		t.Errorf("Pattern.Category = %q, want %q", res.Pattern.Category, "first")
	}
	if res.Eligible != 2 {
		t.Errorf("Eligible = %d, want 2 (evaluation should stop at the first match)", res.Eligible)
	}
}

func TestEvaluateFilter_NoMatch(t *testing.T) {
	rs := mustRuleSet(t, kmsPayload)

	res := EvaluateFilter(rs, "fine", filter.Filter{})
	if res.Matched || res.Index != -1 || res.Pattern != nil {
		t.Errorf("EvaluateFilter() = %+v, want no match", res)
	}
	if res.Eligible != 1 {
		t.Errorf("Eligible = %d, want 1", res.Eligible)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	rs := rules.Default()
	inputs := []string{"Sewer Slide", "sewerxx   slide", "have a nice day", "K.M.S"}

	for _, in := range inputs {
		first, err1 := Evaluate(rs, in, "category=suicide")
		second, err2 := Evaluate(rs, in, "category=suicide")
		if err1 != nil || err2 != nil {
			t.Fatalf("Evaluate() unexpected errors: %v, %v", err1, err2)
		}
		if first != second {
			t.Errorf("Evaluate(%q) not idempotent: %v then %v", in, first, second)
		}
	}
}

func TestEvaluate_DefaultRuleSet(t *testing.T) {
	rs := rules.Default()

	tests := []struct {
		text string
		want bool
	}{
		{"sewerslide", true},
		{"Sewer-Slide!", true},
		{"sewerxx   slide", false},
		{"k.m.s", true},
		{"bookmarks", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Evaluate(rs, tt.text, "")
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	rs := rules.NewRuleSet("", regexp.MustCompile(`[^\p{L}\p{N}]+`), nil)

	tests := []struct {
		in   string
		want string
	}{
		{"K M S", "kms"},
		{"Hello, World!", "helloworld"},
		{"ÉCOLE", "école"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Canonicalize(rs, tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
