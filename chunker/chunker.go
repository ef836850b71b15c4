package chunker

import (
	"errors"
	"strings"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 500
)

// PageContent is what a reader extracts from one document page.
type PageContent struct {
	Number int
	Text   string
	Tables [][][]string
}

type Window struct {
	Start int
	End   int
	Text  string
}

type Builder struct {
	chunkSize    int
	chunkOverlap int
	junkPhrases  []string
}

func NewBuilder(size, overlap int, junkPhrases []string) (*Builder, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 || overlap >= size {
		return nil, errors.New("chunk overlap must be in [0, chunk size)")
	}
	if junkPhrases == nil {
		junkPhrases = DefaultJunkPhrases
	}

	return &Builder{
		chunkSize:    size,
		chunkOverlap: overlap,
		junkPhrases:  junkPhrases,
	}, nil
}

// BuildPage composes the page text and splits it into chunks tagged with the page and source.
func (b *Builder) BuildPage(source string, page PageContent) []Chunk {
	cleaned := FilterBoilerplate(page.Text, b.junkPhrases)
	text := ComposePage(page.Number, source, cleaned, page.Tables)

	windows := b.Split(text)
	res := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		res = append(res, Chunk{
			Text:   w.Text,
			Source: source,
			Page:   page.Number,
			Metadata: map[string]any{
				CharStart: w.Start,
				CharEnd:   w.End,
			},
		})
	}

	return res
}

// Split cuts text into windows of at most chunkSize runes overlapping by chunkOverlap.
// A window that does not reach the end of the text is shortened to its last newline
// when that newline lies past the window's midpoint.
// Whitespace-only windows produce no chunk; their range is merged into the neighbouring
// window so the windows still cover the whole text.
func (b *Builder) Split(text string) []Window {
	runes := []rune(text)
	l := len(runes)

	var res []Window
	start := 0
	pending := -1
	for start < l {
		end := min(start+b.chunkSize, l)
		if end < l {
			nl := lastNewline(runes[start:end])
			if nl != -1 && start+nl > start+b.chunkSize/2 {
				end = start + nl
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		switch {
		case chunk != "":
			w := Window{Start: start, End: end, Text: chunk}
			if pending != -1 {
				w.Start = pending
				pending = -1
			}
			res = append(res, w)
		case len(res) > 0:
			res[len(res)-1].End = max(res[len(res)-1].End, end)
		case pending == -1:
			pending = start
		}
		if end >= l {
			break
		}

		next := end - b.chunkOverlap
		if next <= start {
			start = end
		} else {
			start = next
		}
	}

	return res
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}

	return -1
}
