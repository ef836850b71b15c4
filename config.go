package main

import (
	"fmt"
	"os"

	"github.com/gamma-omg/policy-rag/chunker"
	"github.com/gamma-omg/policy-rag/docstore"
	"github.com/gamma-omg/policy-rag/llm"
	"github.com/gamma-omg/policy-rag/retriever"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogFile       string   `yaml:"log"`
	LogLevel      string   `yaml:"log_level"`
	DocRoot       string   `yaml:"doc_root"`
	ChunksPath    string   `yaml:"chunks_path"`
	MergeEventsMs int      `yaml:"write_debounce_ms"`
	ChunkSize     int      `yaml:"chunk_size"`
	ChunkOverlap  *int     `yaml:"chunk_overlap"`
	JunkPhrases   []string `yaml:"junk_phrases"`
	RequestSize   int      `yaml:"request_size"`
	Results       int      `yaml:"results"`
	Expansions    []string `yaml:"expansions"`
	ServerAddr    string   `yaml:"server_addr"`
	Store         struct {
		Backend     string `yaml:"backend"`
		ChromaAddr  string `yaml:"chroma_addr"`
		Collection  string `yaml:"collection"`
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
		Dimension   int    `yaml:"dimension"`
	} `yaml:"store"`
	Chat struct {
		Model   string `yaml:"model"`
		ApiKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"chat"`
	OpenAI *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"open_ai"`
	Gemini *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"gemini"`
}

const (
	backendChroma   = "chroma"
	backendSQLite   = "sqlite"
	backendPgVector = "pgvector"
)

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.DocRoot == "" {
		cfg.DocRoot = "data"
	}
	if cfg.ChunksPath == "" {
		cfg.ChunksPath = "processed_chunks.json"
	}
	if cfg.MergeEventsMs <= 0 {
		cfg.MergeEventsMs = 500
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	if cfg.ChunkOverlap == nil {
		overlap := chunker.DefaultChunkOverlap
		cfg.ChunkOverlap = &overlap
	}
	if cfg.RequestSize <= 0 {
		cfg.RequestSize = docstore.DefaultRequestSize
	}
	if cfg.Results <= 0 {
		cfg.Results = retriever.DefaultResults
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = "localhost:8080"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = backendChroma
	}
	if cfg.Store.ChromaAddr == "" {
		cfg.Store.ChromaAddr = "http://localhost:8000"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = docstore.DefaultCollection
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "policy_db/corpus.db"
	}
	if cfg.Store.Dimension <= 0 {
		cfg.Store.Dimension = 1536
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = llm.DefaultModel
	}
	if cfg.Chat.ApiKey == "" {
		cfg.Chat.ApiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAI != nil && cfg.OpenAI.ApiKey == "" {
		cfg.OpenAI.ApiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini != nil && cfg.Gemini.ApiKey == "" {
		cfg.Gemini.ApiKey = os.Getenv("GEMINI_API_KEY")
	}
}
