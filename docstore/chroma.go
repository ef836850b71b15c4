package docstore

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const DefaultCollection = "insurance_policy_chunks"

type collection interface {
	Add(ctx context.Context, opts ...chroma.CollectionUpdateOption) error
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, opts ...chroma.CollectionDeleteOption) error
	Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (chroma.QueryResult, error)
}

type queryGroups interface {
	GetDocumentsGroups() []chroma.Documents
	GetMetadatasGroups() []chroma.DocumentMetadatas
}

type ChromaStoreConfig struct {
	BaseURL       string
	Collection    string
	EmbeddingFunc embeddings.EmbeddingFunction
	// Reset drops the collection before opening it.
	Reset bool
}

// ChromaStore keeps entries in a Chroma collection that embeds texts with its own embedding function.
type ChromaStore struct {
	client chroma.Client
	col    collection
}

func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}

	if cfg.Reset {
		err = client.DeleteCollection(ctx, name)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reset collection %s: %w", name, err)
		}
	}

	col, err := client.GetOrCreateCollection(ctx, name, chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}

	return &ChromaStore{
		client: client,
		col:    col,
	}, nil
}

func (ds *ChromaStore) Count(ctx context.Context) (int, error) {
	n, err := ds.col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}

	return n, nil
}

func (ds *ChromaStore) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, len(entries))
	texts := make([]string, len(entries))
	metas := make([]chroma.DocumentMetadata, len(entries))
	for i, e := range entries {
		ids[i] = chroma.DocumentID(e.ID)
		texts[i] = e.Text
		metas[i] = chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(MetaSource, e.Source),
			chroma.NewIntAttribute(MetaPage, int64(e.Page)),
		)
	}

	err := ds.col.Add(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add entries: %w", err)
	}

	return nil
}

func (ds *ChromaStore) Query(ctx context.Context, texts []string, n int) (QueryResult, error) {
	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(texts...),
		chroma.WithNResults(n),
	)
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to retrieve texts: %w", err)
	}

	return toQueryResult(r), nil
}

func (ds *ChromaStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	docIDs := make([]chroma.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chroma.DocumentID(id)
	}

	if err := ds.col.Delete(ctx, chroma.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	return nil
}

func (ds *ChromaStore) Close() error {
	if ds.client == nil {
		return nil
	}

	return ds.client.Close()
}

func toQueryResult(r queryGroups) QueryResult {
	docGroups := r.GetDocumentsGroups()
	metaGroups := r.GetMetadatasGroups()

	res := QueryResult{
		Documents: make([][]string, len(docGroups)),
		Metadatas: make([][]map[string]any, len(docGroups)),
	}
	for g, docs := range docGroups {
		var metas chroma.DocumentMetadatas
		if g < len(metaGroups) {
			metas = metaGroups[g]
		}

		res.Documents[g] = make([]string, len(docs))
		res.Metadatas[g] = make([]map[string]any, len(docs))
		for i, doc := range docs {
			res.Documents[g][i] = doc.ContentString()

			var meta chroma.DocumentMetadata
			if i < len(metas) {
				meta = metas[i]
			}
			res.Metadatas[g][i] = metadataToMap(meta)
		}
	}

	return res
}

// metadataToMap restores {source, page}. Pages may come back as floats after a JSON round trip.
func metadataToMap(meta chroma.DocumentMetadata) map[string]any {
	res := make(map[string]any)
	if meta == nil {
		return res
	}

	if source, ok := meta.GetString(MetaSource); ok {
		res[MetaSource] = source
	}

	if page, ok := meta.GetInt(MetaPage); ok {
		res[MetaPage] = int(page)
	} else if page, ok := meta.GetFloat(MetaPage); ok {
		res[MetaPage] = int(page)
	}

	return res
}
