package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gamma-omg/policy-rag/chunker"
	"github.com/gamma-omg/policy-rag/docstore"
	"github.com/gamma-omg/policy-rag/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_readConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := readConfig(writeConfig(t, "open_ai:\n  model: text-embedding-3-small\n"))
	require.NoError(t, err)

	assert.Equal(t, chunker.DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, chunker.DefaultChunkOverlap, *cfg.ChunkOverlap)
	assert.Equal(t, docstore.DefaultRequestSize, cfg.RequestSize)
	assert.Equal(t, 5, cfg.Results)
	assert.Equal(t, backendChroma, cfg.Store.Backend)
	assert.Equal(t, docstore.DefaultCollection, cfg.Store.Collection)
	assert.Equal(t, llm.DefaultModel, cfg.Chat.Model)
	assert.Equal(t, "sk-env", cfg.Chat.ApiKey)
	require.NotNil(t, cfg.OpenAI)
	assert.Equal(t, "sk-env", cfg.OpenAI.ApiKey)
	assert.Nil(t, cfg.Gemini)
}

func Test_readConfig_Overrides(t *testing.T) {
	cfg, err := readConfig(writeConfig(t, `
chunk_size: 800
chunk_overlap: 0
results: 3
expansions: ["{question}", "limits {question}"]
store:
  backend: sqlite
  sqlite_path: /tmp/corpus.db
chat:
  api_key: sk-file
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 0, *cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.Results)
	assert.Equal(t, []string{"{question}", "limits {question}"}, cfg.Expansions)
	assert.Equal(t, backendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/corpus.db", cfg.Store.SQLitePath)
	assert.Equal(t, "sk-file", cfg.Chat.ApiKey)
}

func Test_readConfig_Errors(t *testing.T) {
	_, err := readConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = readConfig(writeConfig(t, "chunk_size: [1, 2"))
	assert.Error(t, err)
}

func Test_createEmbeddingFunction_RequiresProvider(t *testing.T) {
	_, err := createEmbeddingFunction(&Config{})
	assert.Error(t, err)
}

func Test_newLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.log")
	cfg := &Config{LogFile: path, LogLevel: "warn"}

	logger, closer, err := newLogger(cfg)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, closer.Close())

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(buf), "dropped")
	assert.Contains(t, string(buf), `"msg":"kept"`)

	_, _, err = newLogger(&Config{LogLevel: "loud"})
	assert.Error(t, err)
}
