package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"claim":"a"}]`, `[{"claim":"a"}]`},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"upper fence", "```JSON\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"no closing fence", "```json\n[1]", "[1]"},
		{"surrounding whitespace", "  \n```json\n[1]\n```\n  ", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClaims(t *testing.T) {
	claims, err := ParseClaims("```json\n" + `[
		{"claim": "A", "classification": "True", "reason": "r", "source": "s", "extra": 1},
		"not an object",
		{"claim": 42, "classification": null}
	]` + "\n```")
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(claims))
	}
	if claims[0].Claim != "A" || claims[0].Source != "s" {
		t.Errorf("Unexpected first claim: %+v", claims[0])
	}
	if claims[1].Claim != "42" || claims[1].Classification != "" {
		t.Errorf("Unexpected second claim: %+v", claims[1])
	}
}

func TestParseClaims_NotArray(t *testing.T) {
	for _, in := range []string{
		`{"claim": "a"}`,
		"null",
		"Sure! Here is the JSON: []",
		"[{\"claim\": \"unterminated\"",
		"",
	} {
		if _, err := ParseClaims(in); !errors.Is(err, ErrNotJSONArray) {
			t.Errorf("ParseClaims(%q) error = %v, want ErrNotJSONArray", in, err)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("chunk one\n\n--- NEXT CHUNK ---\n\nchunk two")

	for _, want := range []string{
		"extract the top 3 most significant factual claims",
		`"source": "Local Model Analysis (No real-time web search available)"`,
		"'True', 'False', 'Misleading', or 'Unverifiable'",
		"chunk one\n\n--- NEXT CHUNK ---\n\nchunk two",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
