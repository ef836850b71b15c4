package readers

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Horizontal distance in points that separates two table cells on the same row.
const cellGap = 12.0

type PdfPageReader struct {
	Log *slog.Logger
}

func (r *PdfPageReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ReadPages extracts text and tables page by page. Pages that fail to parse are logged and skipped.
func (r *PdfPageReader) ReadPages(path string) ([]Page, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf document: %w", err)
	}
	defer f.Close()

	log := r.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pages := make([]Page, 0, rdr.NumPage())
	for i := 1; i <= rdr.NumPage(); i++ {
		p := rdr.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Warn("skipping unreadable page", "file", path, "page", i, "error", err)
			continue
		}

		var tables [][][]string
		rows, err := p.GetTextByRow()
		if err != nil {
			log.Warn("unable to extract tables", "file", path, "page", i, "error", err)
		} else {
			tables = extractTables(rows)
		}

		pages = append(pages, Page{
			Number: i,
			Text:   text,
			Tables: tables,
		})
	}

	return pages, nil
}

// extractTables treats runs of at least two consecutive multi-cell rows as a table.
func extractTables(rows pdf.Rows) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, padRows(current))
		}
		current = nil
	}

	for _, row := range rows {
		cells := splitCells(row.Content)
		if len(cells) < 2 {
			flush()
			continue
		}
		current = append(current, cells)
	}
	flush()

	return tables
}

func splitCells(texts pdf.TextHorizontal) []string {
	var cells []string
	var sb strings.Builder
	prevEnd := 0.0

	for i, t := range texts {
		if i > 0 && t.X-prevEnd > cellGap {
			cells = appendCell(cells, sb.String())
			sb.Reset()
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	cells = appendCell(cells, sb.String())

	return cells
}

func appendCell(cells []string, cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return cells
	}

	return append(cells, cell)
}

func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}

	return rows
}
