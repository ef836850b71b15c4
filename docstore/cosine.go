package docstore

import (
	"math"
	"sort"
)

// cosineSimilarity returns a value in [-1, 1], or 0 for vectors of different or zero length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scored struct {
	entry Entry
	score float64
}

// rank orders candidates by descending similarity. Ties keep insertion order.
func rank(query []float32, entries []Entry, vecs [][]float32, n int) []Entry {
	results := make([]scored, len(entries))
	for i, e := range entries {
		results[i] = scored{entry: e, score: cosineSimilarity(query, vecs[i])}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}

	top := make([]Entry, len(results))
	for i, r := range results {
		top[i] = r.entry
	}

	return top
}
