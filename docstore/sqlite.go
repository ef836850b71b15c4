package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT NOT NULL UNIQUE,
	document  TEXT NOT NULL,
	source    TEXT NOT NULL,
	page      INTEGER NOT NULL,
	embedding TEXT NOT NULL
)`

type SQLiteStoreConfig struct {
	Path     string
	Embedder Embedder
	Reset    bool
}

// SQLiteStore is a single file store that ranks entries by brute-force cosine similarity.
type SQLiteStore struct {
	db *sql.DB
	ef Embedder
}

func NewSQLiteStore(ctx context.Context, cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Embedder == nil {
		return nil, errors.New("sqlite store requires an embedder")
	}

	dsn := cfg.Path
	if dsn == "" {
		dsn = "policy_db/corpus.db"
	}

	dir := filepath.Dir(dsn)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if cfg.Reset {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS entries`); err != nil {
			db.Close()
			return nil, fmt.Errorf("reset sqlite store: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, ef: cfg.Embedder}, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return n, nil
}

// Add embeds the entries and inserts them in a single transaction.
func (s *SQLiteStore) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vecs, err := embedDocuments(ctx, s.ef, texts)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, document, source, page, embedding)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		raw, err := json.Marshal(vecs[i])
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, e.ID, e.Text, e.Source, e.Page, string(raw)); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, texts []string, n int) (QueryResult, error) {
	entries, vecs, err := s.loadAll(ctx)
	if err != nil {
		return QueryResult{}, err
	}

	res := QueryResult{
		Documents: make([][]string, len(texts)),
		Metadatas: make([][]map[string]any, len(texts)),
	}
	for q, text := range texts {
		qv, err := embedQuery(ctx, s.ef, text)
		if err != nil {
			return QueryResult{}, err
		}

		top := rank(qv, entries, vecs, n)
		res.Documents[q] = make([]string, len(top))
		res.Metadatas[q] = make([]map[string]any, len(top))
		for i, e := range top {
			res.Documents[q][i] = e.Text
			res.Metadatas[q][i] = e.Metadata()
		}
	}

	return res, nil
}

func (s *SQLiteStore) loadAll(ctx context.Context) ([]Entry, [][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, source, page, embedding
		FROM entries ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	var vecs [][]float32
	for rows.Next() {
		var e Entry
		var raw string
		if err := rows.Scan(&e.ID, &e.Text, &e.Source, &e.Page, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan entry: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, nil, fmt.Errorf("unmarshal embedding of %s: %w", e.ID, err)
		}

		entries = append(entries, e)
		vecs = append(vecs, vec)
	}

	return entries, vecs, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
