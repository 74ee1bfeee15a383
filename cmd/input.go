package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abhisek/menuquiz/internal/pdftext"
)

// readMenu reads menu text from path, or stdin when path is "-". PDFs are
// detected by their header and converted to text.
func readMenu(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read menu: %w", err)
	}

	if pdftext.Validate(data) != nil {
		return string(data), nil
	}
	doc, err := pdftext.Extract(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return doc.Text, nil
}
