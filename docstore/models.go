package docstore

import (
	"context"
	"fmt"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const (
	MetaSource = "source"
	MetaPage   = "page"
)

// Entry is a chunk as it is persisted in the store.
type Entry struct {
	ID     string
	Text   string
	Source string
	Page   int
}

func (e Entry) Metadata() map[string]any {
	return map[string]any{
		MetaSource: e.Source,
		MetaPage:   e.Page,
	}
}

// QueryResult holds one ranked list of documents and metadatas per query text.
type QueryResult struct {
	Documents [][]string
	Metadatas [][]map[string]any
}

type Store interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, texts []string, n int) (QueryResult, error)
	Delete(ctx context.Context, ids []string) error
	Close() error
}

// Embedder turns texts into vectors for stores that do not embed on their own.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type chromaEmbedder struct {
	ef embeddings.EmbeddingFunction
}

// NewChromaEmbedder adapts a chroma embedding function (OpenAI, Gemini, ...) to Embedder.
func NewChromaEmbedder(ef embeddings.EmbeddingFunction) Embedder {
	return &chromaEmbedder{ef: ef}
}

func (e *chromaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embs, err := e.ef.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}

	res := make([][]float32, len(embs))
	for i, emb := range embs {
		res[i] = emb.ContentAsFloat32()
	}

	return res, nil
}

func (e *chromaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	emb, err := e.ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	return emb.ContentAsFloat32(), nil
}

func embedDocuments(ctx context.Context, ef Embedder, texts []string) ([][]float32, error) {
	vecs, err := ef.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d documents", len(vecs), len(texts))
	}

	return vecs, nil
}

func embedQuery(ctx context.Context, ef Embedder, text string) ([]float32, error) {
	vec, err := ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return vec, nil
}
