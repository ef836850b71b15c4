package docstore

import (
	"context"
	"errors"
	"hash/fnv"
	"slices"
	"strings"
)

const fakeDim = 64

// wordEmbedder hashes words into buckets, so texts sharing words are close.
type wordEmbedder struct {
	fail bool
}

func (e *wordEmbedder) embed(text string) []float32 {
	vec := make([]float32, fakeDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(w, ".,?:$")))
		vec[h.Sum32()%fakeDim]++
	}

	return vec
}

func (e *wordEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, errors.New("embedding backend unreachable")
	}

	res := make([][]float32, len(texts))
	for i, t := range texts {
		res[i] = e.embed(t)
	}

	return res, nil
}

func (e *wordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, errors.New("embedding backend unreachable")
	}

	return e.embed(text), nil
}

type fakeStore struct {
	entries  []Entry
	addCalls int
	addErr   error
	// failOnAdd makes the n-th Add call (1-based) fail with addErr.
	failOnAdd int
	deleteErr error
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	return len(s.entries), nil
}

func (s *fakeStore) Add(ctx context.Context, entries []Entry) error {
	s.addCalls++
	if s.addErr != nil && (s.failOnAdd == 0 || s.failOnAdd == s.addCalls) {
		return s.addErr
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *fakeStore) Query(ctx context.Context, texts []string, n int) (QueryResult, error) {
	panic("not implemented")
}

func (s *fakeStore) Delete(ctx context.Context, ids []string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.entries = slices.DeleteFunc(s.entries, func(e Entry) bool { return drop[e.ID] })
	return nil
}

func (s *fakeStore) Close() error {
	return nil
}
