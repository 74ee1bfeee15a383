package menutext

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"éééé", 1},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestComputeBudget(t *testing.T) {
	system := strings.Repeat("s", 4000)                                 // 1000 tokens
	template := "Menu:\n" + MenuPlaceholder + strings.Repeat("t", 1994) // 2000 chars without placeholder
	b := ComputeBudget(system, template)

	if b.SystemTokens != 1000 || b.TemplateTokens != 500 {
		t.Fatalf("got system=%d template=%d", b.SystemTokens, b.TemplateTokens)
	}
	if b.Reserved != 1000+500+ResponseReserveTokens {
		t.Errorf("Reserved = %d", b.Reserved)
	}
	if b.Available != MaxContextTokens-b.Reserved {
		t.Errorf("Available = %d", b.Available)
	}
	if b.MaxChars != b.Available*3 {
		t.Errorf("MaxChars = %d", b.MaxChars)
	}
}

func TestComputeBudget_NeverNegative(t *testing.T) {
	b := ComputeBudget(strings.Repeat("s", 4*MaxContextTokens), "")
	if b.Available >= 0 {
		t.Fatalf("Available = %d, expected negative", b.Available)
	}
	if b.MaxChars != 0 {
		t.Errorf("MaxChars = %d, want 0", b.MaxChars)
	}
}

func TestFitToBudget_NoTruncation(t *testing.T) {
	menu := "Pizza Regina 120g"
	if got := FitToBudget(menu, "system", MenuPlaceholder); got != menu {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestFitToBudget_StaysWithinAvailable(t *testing.T) {
	system := strings.Repeat("s", 8000)
	template := "Rol: Cocinero\n" + MenuPlaceholder
	b := ComputeBudget(system, template)

	for _, size := range []int{b.MaxChars - 1, b.MaxChars, b.MaxChars + 1, b.MaxChars * 2} {
		menu := strings.Repeat("à", size)
		got := FitToBudget(menu, system, template)

		limit := b.Available + EstimateTokens(TruncatedMarker)
		if tokens := EstimateTokens(got); tokens > limit {
			t.Errorf("size %d: %d tokens exceeds %d", size, tokens, limit)
		}
		truncated := strings.HasSuffix(got, TruncatedMarker)
		if truncated != (size > b.MaxChars) {
			t.Errorf("size %d: truncated = %v", size, truncated)
		}
		if !utf8.ValidString(got) {
			t.Errorf("size %d: invalid UTF-8", size)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in      string
		max     int
		want    string
		wantCut bool
	}{
		{"hello", 10, "hello", false},
		{"hello", 5, "hello", false},
		{"hello", 3, "hel…", true},
		{"crème", 3, "crè…", true},
		{"abc", 0, "…", true},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		got, cut := Truncate(tt.in, tt.max, "…")
		if got != tt.want || cut != tt.wantCut {
			t.Errorf("Truncate(%q, %d) = %q, %v; want %q, %v", tt.in, tt.max, got, cut, tt.want, tt.wantCut)
		}
	}
}
