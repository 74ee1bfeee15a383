package theme

import (
	"strings"
	"testing"
)

func TestCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.0000"},
		{0.0042, "$0.0042"},
		{0.01, "$0.01"},
		{12.345, "$12.35"},
	}
	for _, tt := range tests {
		if got := Cost(tt.in); got != tt.want {
			t.Errorf("Cost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("gpt-4o-mini", 5); got != "gpt-4" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestTable(t *testing.T) {
	out := Table("Role", "Name").Row("garzon", "Garzón/Mesero").String()
	if !strings.Contains(out, "garzon") || !strings.Contains(out, "Role") {
		t.Errorf("table output missing cells:\n%s", out)
	}
}

func TestField(t *testing.T) {
	if out := Field("Pages", 3); !strings.Contains(out, "Pages") || !strings.Contains(out, "3") {
		t.Errorf("Field output = %q", out)
	}
}
