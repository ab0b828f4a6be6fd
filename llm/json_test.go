package llm

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"plain", `{"can_answer": true, "confidence": 0.8}`, true},
		{"fenced", "Here you go:\n```json\n{\"can_answer\": false}\n```", true},
		{"prose prefix", `Sure! The result is {"is_safe": true} as requested.`, true},
		{"comments", "{\n// model note\n\"a\": 1\n}", true},
		{"missing key quote", `{a": 1, "b": 2}`, true},
		{"no json", "I cannot answer that.", false},
		{"unbalanced", `{"a": {"b": 1}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ExtractJSON(tc.raw)
			if tc.ok && err != nil {
				t.Fatalf("ExtractJSON(%q) error: %v", tc.raw, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("ExtractJSON(%q) = %q, want error", tc.raw, out)
				}
				return
			}
			if !gjson.Valid(out) {
				t.Fatalf("extracted invalid json: %q", out)
			}
		})
	}
}

func TestExtractJSON_NestedStrings(t *testing.T) {
	raw := `{"reason": "use a {brace} safely", "ok": true}`
	out, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if gjson.Get(out, "reason").String() != "use a {brace} safely" {
		t.Fatalf("string braces mishandled: %q", out)
	}
}
