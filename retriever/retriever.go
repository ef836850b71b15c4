package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gamma-omg/policy-rag/docstore"
)

// QuestionPlaceholder is replaced with the user question in expansion templates.
const QuestionPlaceholder = "{question}"

const DefaultResults = 5

// DefaultExpansions widen recall: the question itself, a coverage/limit rephrasing,
// a table rephrasing and a static query for the pre-existing condition rules.
var DefaultExpansions = []string{
	QuestionPlaceholder,
	"plan coverage limit " + QuestionPlaceholder,
	"table data " + QuestionPlaceholder,
	"pre-existing conditions stable months all plans",
}

type querier interface {
	Query(ctx context.Context, texts []string, n int) (docstore.QueryResult, error)
}

type Retriever struct {
	store      querier
	results    int
	expansions []string
}

func New(store querier, results int, expansions []string) *Retriever {
	if results <= 0 {
		results = DefaultResults
	}
	if len(expansions) == 0 {
		expansions = DefaultExpansions
	}

	return &Retriever{
		store:      store,
		results:    results,
		expansions: expansions,
	}
}

// Queries returns the reformulations issued for a question, in order.
func (r *Retriever) Queries(question string) []string {
	queries := make([]string, len(r.expansions))
	for i, e := range r.expansions {
		queries[i] = strings.ReplaceAll(e, QuestionPlaceholder, question)
	}

	return queries
}

// Retrieve runs every reformulation against the store and assembles a page annotated
// context block. A text retrieved more than once keeps its first position only.
func (r *Retriever) Retrieve(ctx context.Context, question string) (string, error) {
	seen := make(map[string]struct{})
	var sb strings.Builder

	for _, q := range r.Queries(question) {
		res, err := r.store.Query(ctx, []string{q}, r.results)
		if err != nil {
			return "", fmt.Errorf("failed to query %q: %w", q, err)
		}
		if len(res.Documents) == 0 {
			return "", errors.New("store returned no result group")
		}

		docs := res.Documents[0]
		var metas []map[string]any
		if len(res.Metadatas) > 0 {
			metas = res.Metadatas[0]
		}

		for i, doc := range docs {
			if _, ok := seen[doc]; ok {
				continue
			}
			seen[doc] = struct{}{}

			var meta map[string]any
			if i < len(metas) {
				meta = metas[i]
			}
			fmt.Fprintf(&sb, "[Page %s]: %s\n\n", pageLabel(meta), doc)
		}
	}

	return sb.String(), nil
}

func pageLabel(meta map[string]any) string {
	page, ok := meta[docstore.MetaPage]
	if !ok || page == nil {
		return "Unknown"
	}

	return fmt.Sprint(page)
}
