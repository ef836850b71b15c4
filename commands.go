package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamma-omg/policy-rag/answerer"
	"github.com/gamma-omg/policy-rag/assistant"
	"github.com/gamma-omg/policy-rag/chunker"
	"github.com/gamma-omg/policy-rag/docstore"
	"github.com/gamma-omg/policy-rag/eval"
	"github.com/gamma-omg/policy-rag/llm"
	"github.com/gamma-omg/policy-rag/readers"
	"github.com/gamma-omg/policy-rag/retriever"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// app is what every command needs: the decoded config and a logger writing where it says.
type app struct {
	cfg    *Config
	log    *slog.Logger
	closer io.Closer
}

func loadApp(cfgPath string) (*app, error) {
	cfg, err := readConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: logger, closer: closer}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func (a *app) registry() (*DocRegistry, error) {
	builder, err := chunker.NewBuilder(a.cfg.ChunkSize, *a.cfg.ChunkOverlap, a.cfg.JunkPhrases)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	reg := &DocRegistry{
		log:              a.log,
		root:             a.cfg.DocRoot,
		out:              a.cfg.ChunksPath,
		mergeEventsDelay: time.Duration(a.cfg.MergeEventsMs) * time.Millisecond,
		chunker:          builder,
	}
	reg.RegisterReader(
		&readers.PdfPageReader{Log: a.log},
		&readers.TxtPageReader{},
		&readers.UniversalPageReader{},
	)

	return reg, nil
}

func (a *app) assistant(ctx context.Context) (*assistant.Assistant, docstore.Store, error) {
	store, err := initStore(ctx, a.cfg, false)
	if err != nil {
		return nil, nil, err
	}

	chat := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  a.cfg.Chat.ApiKey,
		BaseURL: a.cfg.Chat.BaseURL,
		Model:   a.cfg.Chat.Model,
	})

	return assistant.New(
		a.log,
		retriever.New(store, a.cfg.Results, a.cfg.Expansions),
		answerer.New(chat, answerer.TravelProfile),
	), store, nil
}

func ingestCMD(cfgPath *string) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk the policy documents into the chunk file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			reg, err := a.registry()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			chunks, err := reg.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chunks to %s\n", len(chunks), a.cfg.ChunksPath)

			if !watch {
				return nil
			}

			err = reg.Watch(ctx)
			if err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and rebuild the chunk file when documents change")

	return cmd
}

func populateCMD(cfgPath *string) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Embed the chunk file into the corpus store, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			chunks, err := chunker.LoadChunks(a.cfg.ChunksPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStore(ctx, a.cfg, reset)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := docstore.Populate(ctx, store, chunks, docstore.PopulateOptions{
				Log:         a.log,
				RequestSize: a.cfg.RequestSize,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %d entries\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the stored corpus before populating")

	return cmd
}

func askCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single policy question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			asst, store, err := a.assistant(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			answer, err := asst.AskPolicy(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func serveCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve ask_policy as an MCP tool over SSE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			asst, store, err := a.assistant(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			srv := NewRagServer(asst, a.log)
			sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", a.cfg.ServerAddr)))

			a.log.Info("serving", "addr", a.cfg.ServerAddr)
			return sse.Start(a.cfg.ServerAddr)
		},
	}
}

func evalCMD(cfgPath *string) *cobra.Command {
	var judge bool

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation questions and print the score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			asst, store, err := a.assistant(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var grader eval.Grader = eval.ContainsGrader{}
			if judge {
				grader = eval.NewJudgeGrader(llm.NewOpenAIClient(llm.OpenAIConfig{
					APIKey:  a.cfg.Chat.ApiKey,
					BaseURL: a.cfg.Chat.BaseURL,
					Model:   a.cfg.Chat.Model,
				}))
			}

			_, err = eval.Run(ctx, asst, grader, eval.DefaultCases, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&judge, "judge", false, "grade answers with the chat model instead of substring checks")

	return cmd
}
