package readers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Form feed characters separate pages in text exported from pdftotext.
const pageBreak = "\f"

type TxtPageReader struct{}

func (r *TxtPageReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

func (r *TxtPageReader) ReadPages(path string) ([]Page, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	parts := strings.Split(string(buf), pageBreak)
	pages := make([]Page, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, Page{Number: i + 1, Text: p})
	}

	return pages, nil
}
