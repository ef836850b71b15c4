package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/gamma-omg/policy-rag/docstore"
)

const defaultEmbeddingModel = "text-embedding-3-small"

func createEmbeddingFunction(cfg *Config) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		model := cfg.OpenAI.Model
		if model == "" {
			model = defaultEmbeddingModel
		}

		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAI.ApiKey,
			openai.WithModel(openai.EmbeddingModel(model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.Gemini.ApiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}

func initStore(ctx context.Context, cfg *Config, reset bool) (docstore.Store, error) {
	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding function: %w", err)
	}

	switch cfg.Store.Backend {
	case backendChroma:
		store, err := docstore.NewChromaStore(ctx, docstore.ChromaStoreConfig{
			BaseURL:       cfg.Store.ChromaAddr,
			Collection:    cfg.Store.Collection,
			EmbeddingFunc: ef,
			Reset:         reset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Chroma store: %w", err)
		}
		return store, nil

	case backendSQLite:
		store, err := docstore.NewSQLiteStore(ctx, docstore.SQLiteStoreConfig{
			Path:     cfg.Store.SQLitePath,
			Embedder: docstore.NewChromaEmbedder(ef),
			Reset:    reset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return store, nil

	case backendPgVector:
		store, err := docstore.NewPgVectorStore(ctx, docstore.PgVectorStoreConfig{
			DSN:       cfg.Store.PostgresDSN,
			Dimension: cfg.Store.Dimension,
			Embedder:  docstore.NewChromaEmbedder(ef),
			Reset:     reset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize pgvector store: %w", err)
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
}
