package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gamma-omg/policy-rag/chunker"
)

const DefaultRequestSize = 100

type PopulateOptions struct {
	Log *slog.Logger
	// RequestSize caps the number of entries sent to the store in one Add call.
	RequestSize int
}

// Populate inserts every chunk into an empty store under ids id0, id1, ... in chunk order.
// A store that already holds entries is left untouched. When a batch fails the batches added
// before it are deleted, so a failed run leaves the store empty and the next run starts over.
// It returns the number of entries added.
func Populate(ctx context.Context, store Store, chunks []chunker.Chunk, opts PopulateOptions) (int, error) {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	if count > 0 {
		log.Info("collection already populated, skipping sync", "count", count)
		return 0, nil
	}

	log.Info("collection is empty, starting one-time embedding", "chunks", len(chunks))

	size := opts.RequestSize
	if size <= 0 {
		size = DefaultRequestSize
	}

	entries := make([]Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = Entry{
			ID:     fmt.Sprintf("id%d", i),
			Text:   c.Text,
			Source: c.Source,
			Page:   c.Page,
		}
	}

	for start := 0; start < len(entries); start += size {
		end := min(start+size, len(entries))
		if err := store.Add(ctx, entries[start:end]); err != nil {
			err = fmt.Errorf("failed to add entries %d-%d: %w", start, end-1, err)
			return 0, rollback(ctx, log, store, entries[:start], err)
		}
	}

	log.Info("collection populated", "count", len(entries))
	return len(entries), nil
}

func rollback(ctx context.Context, log *slog.Logger, store Store, added []Entry, cause error) error {
	if len(added) == 0 {
		return cause
	}

	ids := make([]string, len(added))
	for i, e := range added {
		ids[i] = e.ID
	}

	log.Warn("population failed, removing added entries", "count", len(ids), "error", cause)
	if err := store.Delete(context.WithoutCancel(ctx), ids); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to roll back %d entries: %w", len(ids), err))
	}

	return cause
}
