package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page and
// an info dictionary.
func buildPDF(pages []string, title, author string) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		content := "q Q"
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}
	infoID := len(objs) + 1
	objs = append(objs, fmt.Sprintf("<< /Title (%s) /Author (%s) >>", title, author))

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, infoID, xref)
	return b.Bytes()
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]byte("%PDF-1.7\n...")))
	assert.ErrorIs(t, Validate([]byte("PK\x03\x04")), ErrNotPDF)
	assert.ErrorIs(t, Validate(nil), ErrNotPDF)
}

func TestExtract(t *testing.T) {
	data := buildPDF([]string{"Pizza Margherita 12 EUR", "Tiramisu de la casa"}, "Carta de invierno", "Cocina")

	doc, err := Extract(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount)
	assert.Contains(t, doc.Text, "Margherita")
	assert.Contains(t, doc.Text, "Tiramisu")
	assert.Equal(t, "Carta de invierno", doc.Metadata["Title"])
	assert.Equal(t, "Cocina", doc.Metadata["Author"])
}

func TestExtract_NoText(t *testing.T) {
	_, err := Extract(buildPDF([]string{""}, "Scan", "Scanner"))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_Rejects(t *testing.T) {
	_, err := Extract([]byte("just some text"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = Extract([]byte("%PDF-1.4\nthis is not really a pdf"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotPDF))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"La carta del restaurante: plato principal, postre y bebida", "es"},
		{"Our menu: main dish, dessert and drink prices", "en"},
		{"Cardápio: prato principal, sobremesa, bebida e preço", "pt"},
		{"La carte: plat du jour, fromage, viande ou poisson, boisson", "fr"},
		{"MENÚ DEL DÍA - PRECIO 12€", "es"},
		{"", "en"},
		{"12345 !!!", "en"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
