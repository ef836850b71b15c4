package chunker

import (
	"fmt"
	"strings"
)

// DefaultJunkPhrases are header and footer lines repeated on every page of the comparison charts.
var DefaultJunkPhrases = []string{
	"Manulife Travel Insurance",
	"Comparison Charts for Travelling Canadians",
	"Back to home",
	"Effective October 2, 2023",
	"Continued on next page",
}

const tableMarker = "### DATA TABLE:"

// FilterBoilerplate drops every line containing one of the junk phrases.
func FilterBoilerplate(text string, phrases []string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if !isJunk(strings.TrimSpace(line), phrases) {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

func isJunk(line string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(line, p) {
			return true
		}
	}

	return false
}

// FlattenTables renders every row of every table as a pipe delimited line.
// Empty cells are kept so that all rows of a table have the same column count.
func FlattenTables(tables [][][]string) string {
	var sb strings.Builder
	for _, table := range tables {
		for _, row := range table {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
			}

			sb.WriteString("| ")
			sb.WriteString(strings.Join(cells, " | "))
			sb.WriteString(" |\n")
		}
	}

	return sb.String()
}

// ComposePage builds the chunkable unit of a page: a header naming the page and source,
// the cleaned prose and the flattened tables.
func ComposePage(page int, source string, cleaned string, tables [][][]string) string {
	return fmt.Sprintf("Page %d - %s\n\n%s\n\n%s\n%s", page, source, cleaned, tableMarker, FlattenTables(tables))
}
