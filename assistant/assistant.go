// Package assistant answers questions about a policy document from its indexed chunks.
package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

type contextRetriever interface {
	Retrieve(ctx context.Context, question string) (string, error)
}

type contextAnswerer interface {
	Answer(ctx context.Context, question, contextBlock string) (string, error)
}

type Assistant struct {
	log       *slog.Logger
	retriever contextRetriever
	answerer  contextAnswerer
}

func New(log *slog.Logger, retriever contextRetriever, answerer contextAnswerer) *Assistant {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Assistant{
		log:       log,
		retriever: retriever,
		answerer:  answerer,
	}
}

// AskPolicy retrieves the context for a question and returns the grounded answer.
func (a *Assistant) AskPolicy(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}

	contextBlock, err := a.Context(ctx, question)
	if err != nil {
		return "", err
	}

	answer, err := a.answerer.Answer(ctx, question, contextBlock)
	if err != nil {
		return "", err
	}

	a.log.Info("answered question", "question", question, "answer_len", len(answer))
	return answer, nil
}

// Context returns the page annotated context block a question would be answered from.
func (a *Assistant) Context(ctx context.Context, question string) (string, error) {
	contextBlock, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	a.log.Debug("retrieved context", "question", question, "context_len", len(contextBlock))
	return contextBlock, nil
}
