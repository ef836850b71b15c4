package readers

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"code.sajari.com/docconv/v2"
)

var universalExts = []string{".docx", ".odt", ".xml"}

// UniversalPageReader converts office and XML documents. They have no page structure,
// so the whole document becomes page 1 without tables.
type UniversalPageReader struct {
}

func (r *UniversalPageReader) CanRead(path string) bool {
	return slices.Contains(universalExts, strings.ToLower(filepath.Ext(path)))
}

func (r *UniversalPageReader) ReadPages(path string) ([]Page, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return []Page{{Number: 1, Text: res.Body}}, nil
}
