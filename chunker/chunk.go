package chunker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	CharStart = "char_start"
	CharEnd   = "char_end"
)

// Chunk is a bounded span of a page's composed text, the unit of retrieval.
type Chunk struct {
	Text     string         `json:"text"`
	Source   string         `json:"source"`
	Page     int            `json:"page"`
	Section  *string        `json:"section"`
	Metadata map[string]any `json:"metadata"`
}

func (c Chunk) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return errors.New("chunk text is empty")
	}
	if c.Page <= 0 {
		return fmt.Errorf("chunk page must be positive, got %d", c.Page)
	}
	if c.Source == "" {
		return errors.New("chunk source is empty")
	}

	return nil
}

func SaveChunks(path string, chunks []Chunk) error {
	if chunks == nil {
		chunks = []Chunk{}
	}

	// Written next to the target and renamed, readers never see a partial file.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create chunks file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	err = enc.Encode(chunks)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to write chunks: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("unable to replace chunks file: %w", err)
	}

	return nil
}

func LoadChunks(path string) ([]Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open chunks file: %w", err)
	}
	defer f.Close()

	var chunks []Chunk
	if err := json.NewDecoder(f).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("unable to parse chunks file: %w", err)
	}

	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid chunk %d: %w", i, err)
		}
	}

	return chunks, nil
}
