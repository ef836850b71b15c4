package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if cfg.LogLevel != "" {
		err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel)))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	var out io.WriteCloser = nopCloser{os.Stderr}
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), out, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:          "policy-rag",
		Short:        "Answers travel insurance policy questions from the policy documents",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "cfg/config.yaml", "configuration file")

	root.AddCommand(
		ingestCMD(&cfgPath),
		populateCMD(&cfgPath),
		askCMD(&cfgPath),
		serveCMD(&cfgPath),
		evalCMD(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
