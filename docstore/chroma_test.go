package docstore

import (
	"context"
	"errors"
	"testing"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollection struct {
	count      int
	addOpts    [][]chroma.CollectionUpdateOption
	addErr     error
	failOnAdd  int
	deleteOpts [][]chroma.CollectionDeleteOption
	queryErr   error
}

func (c *fakeCollection) Add(ctx context.Context, opts ...chroma.CollectionUpdateOption) error {
	c.addOpts = append(c.addOpts, opts)
	if c.addErr != nil && len(c.addOpts) == c.failOnAdd {
		return c.addErr
	}
	return nil
}

func (c *fakeCollection) Delete(ctx context.Context, opts ...chroma.CollectionDeleteOption) error {
	c.deleteOpts = append(c.deleteOpts, opts)
	return nil
}

func (c *fakeCollection) Count(ctx context.Context) (int, error) {
	return c.count, nil
}

func (c *fakeCollection) Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (chroma.QueryResult, error) {
	return nil, c.queryErr
}

func Test_ChromaStore_Add(t *testing.T) {
	col := &fakeCollection{}
	store := ChromaStore{col: col}

	require.NoError(t, store.Add(context.Background(), policyEntries))
	require.Len(t, col.addOpts, 1)
	assert.Len(t, col.addOpts[0], 3)

	require.NoError(t, store.Add(context.Background(), nil))
	assert.Len(t, col.addOpts, 1)
}

func Test_ChromaStore_Count(t *testing.T) {
	store := ChromaStore{col: &fakeCollection{count: 42}}

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func Test_ChromaStore_QueryError(t *testing.T) {
	backendErr := errors.New("connection refused")
	store := ChromaStore{col: &fakeCollection{queryErr: backendErr}}

	_, err := store.Query(context.Background(), []string{"dental"}, 5)
	assert.ErrorIs(t, err, backendErr)
}

func Test_ChromaStore_PopulateSkipsNonEmpty(t *testing.T) {
	col := &fakeCollection{count: 3}
	store := &ChromaStore{col: col}

	added, err := Populate(context.Background(), store, makeChunks(2), PopulateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Empty(t, col.addOpts)
}

func Test_metadataToMap(t *testing.T) {
	meta := chroma.NewDocumentMetadata(
		chroma.NewStringAttribute(MetaSource, "charts.pdf"),
		chroma.NewIntAttribute(MetaPage, 12),
	)

	assert.Equal(t, map[string]any{MetaSource: "charts.pdf", MetaPage: 12}, metadataToMap(meta))
	assert.Equal(t, map[string]any{}, metadataToMap(nil))
}

func Test_metadataToMap_FloatPage(t *testing.T) {
	meta := chroma.NewDocumentMetadata(chroma.NewFloatAttribute(MetaPage, 3))
	assert.Equal(t, map[string]any{MetaPage: 3}, metadataToMap(meta))
}

func Test_ChromaStore_PopulateRemovesAddedBatchesOnFailure(t *testing.T) {
	col := &fakeCollection{addErr: errors.New("quota exceeded"), failOnAdd: 2}
	store := &ChromaStore{col: col}

	_, err := Populate(context.Background(), store, makeChunks(5), PopulateOptions{RequestSize: 2})
	require.ErrorIs(t, err, col.addErr)
	require.Len(t, col.deleteOpts, 1)
	assert.Len(t, col.deleteOpts[0], 1)
}

func Test_ChromaStore_DeleteNothing(t *testing.T) {
	col := &fakeCollection{}
	store := ChromaStore{col: col}

	require.NoError(t, store.Delete(context.Background(), nil))
	assert.Empty(t, col.deleteOpts)
}
