package answerer

import (
	"context"
	"fmt"

	"github.com/gamma-omg/policy-rag/llm"
)

type chatModel interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}

type Answerer struct {
	model  chatModel
	system string
}

func New(model chatModel, profile Profile) *Answerer {
	return &Answerer{
		model:  model,
		system: profile.SystemPrompt(),
	}
}

// Answer asks the model once, at zero temperature, and returns its text unmodified.
func (a *Answerer) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	resp, err := a.model.Complete(ctx, llm.Request{
		System:      a.system,
		User:        UserPrompt(question, contextBlock),
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	return resp.Text, nil
}
