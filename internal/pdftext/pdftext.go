// Package pdftext extracts plain text and document information from PDF
// uploads.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF is returned for data without a PDF header.
	ErrNotPDF = errors.New("not a valid PDF file")

	// ErrNoText is returned when a PDF holds no extractable text, as with
	// scanned documents.
	ErrNoText = errors.New("no text could be extracted from the PDF")
)

// MaxTextBytes caps the extracted text.
const MaxTextBytes = 32 << 20

var header = []byte("%PDF")

// Document is the extracted content of a PDF.
type Document struct {
	Text      string            `json:"text"`
	PageCount int               `json:"pages"`
	Metadata  map[string]string `json:"info"`
}

// Validate checks the PDF header.
func Validate(data []byte) error {
	if !bytes.HasPrefix(data, header) {
		return ErrNotPDF
	}
	return nil
}

// Extract reads the text, page count and info dictionary of a PDF held in
// memory. Malformed files that make the parser panic are reported as
// errors.
func Extract(data []byte) (doc *Document, err error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(plain, MaxTextBytes)); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, ErrNoText
	}

	return &Document{
		Text:      text,
		PageCount: r.NumPage(),
		Metadata:  metadata(r.Trailer().Key("Info")),
	}, nil
}

// metadata flattens the string entries of the info dictionary.
func metadata(info pdf.Value) map[string]string {
	out := map[string]string{}
	if info.Kind() != pdf.Dict {
		return out
	}
	for _, k := range info.Keys() {
		if v := info.Key(k); v.Kind() == pdf.String {
			if s := strings.TrimSpace(v.Text()); s != "" {
				out[k] = s
			}
		}
	}
	return out
}
