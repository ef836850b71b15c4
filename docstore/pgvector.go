package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PgVectorStoreConfig struct {
	DSN       string
	Dimension int
	Embedder  Embedder
	Reset     bool
}

// PgVectorStore keeps entries in PostgreSQL and ranks them with the pgvector cosine operator.
type PgVectorStore struct {
	db *sql.DB
	ef Embedder
}

func NewPgVectorStore(ctx context.Context, cfg PgVectorStoreConfig) (*PgVectorStore, error) {
	if cfg.Embedder == nil {
		return nil, errors.New("pgvector store requires an embedder")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("pgvector store requires a positive embedding dimension")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, ef: cfg.Embedder}
	if err := store.migrate(ctx, cfg.Dimension, cfg.Reset); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PgVectorStore) migrate(ctx context.Context, dimension int, reset bool) error {
	var migrations []string
	if reset {
		migrations = append(migrations, `DROP TABLE IF EXISTS policy_chunks`)
	}
	migrations = append(migrations,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS policy_chunks (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			source TEXT NOT NULL,
			page INTEGER NOT NULL,
			embedding vector(%d)
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_policy_chunks_embedding ON policy_chunks USING hnsw (embedding vector_cosine_ops)`,
	)

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policy_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return n, nil
}

func (s *PgVectorStore) Add(ctx context.Context, entries []Entry) error {
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

	for i, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO policy_chunks (id, document, source, page, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)`,
			e.ID, e.Text, e.Source, e.Page, formatEmbedding(vecs[i]))
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}

	return nil
}

func (s *PgVectorStore) Query(ctx context.Context, texts []string, n int) (QueryResult, error) {
	res := QueryResult{
		Documents: make([][]string, len(texts)),
		Metadatas: make([][]map[string]any, len(texts)),
	}

	for q, text := range texts {
		qv, err := embedQuery(ctx, s.ef, text)
		if err != nil {
			return QueryResult{}, err
		}

		top, err := s.search(ctx, qv, n)
		if err != nil {
			return QueryResult{}, err
		}

		res.Documents[q] = make([]string, len(top))
		res.Metadatas[q] = make([]map[string]any, len(top))
		for i, e := range top {
			res.Documents[q][i] = e.Text
			res.Metadatas[q][i] = e.Metadata()
		}
	}

	return res, nil
}

func (s *PgVectorStore) search(ctx context.Context, embedding []float32, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, source, page
		FROM policy_chunks
		ORDER BY embedding <=> $1::vector, seq
		LIMIT $2
	`, formatEmbedding(embedding), n)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Text, &e.Source, &e.Page); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *PgVectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM policy_chunks WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	return nil
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// formatEmbedding renders a vector in pgvector text format: "[0.1,0.2,0.3]".
func formatEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}

	return "[" + strings.Join(parts, ",") + "]"
}
