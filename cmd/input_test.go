package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMenu_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carta.txt")
	if err := os.WriteFile(path, []byte("PIZZAS\nMargherita 12€"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readMenu(path, nil)
	if err != nil {
		t.Fatalf("readMenu: %v", err)
	}
	if got != "PIZZAS\nMargherita 12€" {
		t.Errorf("readMenu = %q", got)
	}
}

func TestReadMenu_Stdin(t *testing.T) {
	got, err := readMenu("-", strings.NewReader("Tiramisú 7€"))
	if err != nil {
		t.Fatalf("readMenu: %v", err)
	}
	if got != "Tiramisú 7€" {
		t.Errorf("readMenu = %q", got)
	}
}

func TestReadMenu_BrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carta.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\ngarbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readMenu(path, nil); err == nil {
		t.Fatal("expected error for a corrupt PDF")
	}
}

func TestReadMenu_Missing(t *testing.T) {
	if _, err := readMenu(filepath.Join(t.TempDir(), "nope.txt"), nil); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
