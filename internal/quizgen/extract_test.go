package quizgen

import "testing"

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `[{"a":1}]`, `[{"a":1}]`, true},
		{"prose around", "Sure! Here you go:\n[{\"a\":1}]\nGood luck [1]", `[{"a":1}]`, true},
		{"bracket inside string", `[{"question_text":"Is [sic] ok?"}] tail`, `[{"question_text":"Is [sic] ok?"}]`, true},
		{"fenced", "```json\n[\n]\n```", "[\n]", true},
		{"first to last bracket", `Result: ["a", "b"] end`, `["a", "b"]`, true},
		{"unterminated", `[{"question_text":"Q","options":[{"text":"x"`, `[{"question_text":"Q","options":[{"text":"x"`, true},
		{"cut after options", `[{"question_text":"Q1","options":[]},{"question_text":"Q2"`, `[{"question_text":"Q1","options":[]},{"question_text":"Q2"`, true},
		{"none", "nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractArray(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractArray(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatchingClose(t *testing.T) {
	s := `{"a":"}","b":{"c":"\"}"}} rest`
	if got := matchingClose(s, 0); got != len(s)-len(" rest")-1 {
		t.Errorf("matchingClose = %d", got)
	}
	if got := matchingClose(`{"a":1`, 0); got != -1 {
		t.Errorf("unclosed: got %d, want -1", got)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("héllo", 2); got != "h" {
		t.Errorf("preview cut inside rune: %q", got)
	}
	if got := preview("short", 300); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
}
