package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gamma-omg/policy-rag/chunker"
	"github.com/gamma-omg/policy-rag/readers"
)

type PageChunker interface {
	BuildPage(source string, page chunker.PageContent) []chunker.Chunk
}

// DocRegistry turns the documents under root into the chunk file consumed by the corpus store.
type DocRegistry struct {
	log              *slog.Logger
	root             string
	out              string
	mergeEventsDelay time.Duration
	chunker          PageChunker
	readers          []readers.PageReader
}

func (dr *DocRegistry) RegisterReader(readers ...readers.PageReader) {
	dr.readers = append(dr.readers, readers...)
}

// Sync rebuilds the chunk file from every readable document under root.
// Documents that fail to read are logged and skipped.
func (dr *DocRegistry) Sync(ctx context.Context) ([]chunker.Chunk, error) {
	docs, err := dr.collectDocs()
	if err != nil {
		return nil, err
	}

	var chunks []chunker.Chunk
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docChunks, err := dr.ingestDocument(doc)
		if err != nil {
			dr.log.Warn("failed to read document", "file", doc, "error", err)
			continue
		}

		dr.log.Info("document chunked", "file", doc, "chunks", len(docChunks))
		chunks = append(chunks, docChunks...)
	}

	err = chunker.SaveChunks(dr.out, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to save chunks: %w", err)
	}

	dr.log.Info("chunks saved", "path", dr.out, "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}

func (dr *DocRegistry) collectDocs() (docs []string, err error) {
	_, err = os.Stat(dr.root)
	if errors.Is(err, fs.ErrNotExist) {
		dr.log.Error("document root does not exist", "root", dr.root)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access document root: %w", err)
	}

	err = filepath.WalkDir(dr.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			dr.log.Warn("unable to access path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if dr.findReader(path) == nil {
			dr.log.Debug(fmt.Sprintf("unsupported file: %s", path))
			return nil
		}

		docs = append(docs, path)
		return nil
	})

	return
}

func (dr *DocRegistry) ingestDocument(path string) ([]chunker.Chunk, error) {
	reader := dr.findReader(path)
	if reader == nil {
		return nil, fmt.Errorf("unable to find reader for file type: %s", filepath.Ext(path))
	}

	pages, err := reader.ReadPages(path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	var chunks []chunker.Chunk
	for _, p := range pages {
		chunks = append(chunks, dr.chunker.BuildPage(source, chunker.PageContent{
			Number: p.Number,
			Text:   p.Text,
			Tables: p.Tables,
		})...)
	}

	return chunks, nil
}

func (dr *DocRegistry) findReader(file string) readers.PageReader {
	for _, r := range dr.readers {
		if r.CanRead(file) {
			return r
		}
	}

	return nil
}

// Watch re-runs Sync whenever a readable document under root changes.
// Bursts of events are merged into one run after mergeEventsDelay of quiet.
func (dr *DocRegistry) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(dr.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dr.root, err)
	}

	go dr.processEvents(ctx, w)
	return nil
}

func (dr *DocRegistry) processEvents(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	timer := time.NewTimer(dr.mergeEventsDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !dr.relevant(w, ev) {
				continue
			}

			dr.log.Debug("document event", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(dr.mergeEventsDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			dr.log.Error("watcher error", "error", err)

		case <-timer.C:
			_, err := dr.Sync(ctx)
			if err != nil {
				dr.log.Error("failed to sync documents", "error", err)
			}
		}
	}
}

func (dr *DocRegistry) relevant(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		info, err := os.Stat(ev.Name)
		if err == nil && info.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				dr.log.Warn("failed to watch directory", "dir", ev.Name, "error", err)
			}
			return true
		}
	}

	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}

	return dr.findReader(ev.Name) != nil
}
