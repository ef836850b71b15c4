package main

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type policyAssistant interface {
	AskPolicy(ctx context.Context, question string) (string, error)
	Context(ctx context.Context, question string) (string, error)
}

func NewRagServer(assistant policyAssistant, log *slog.Logger) *server.MCPServer {
	ask := mcp.NewTool("ask_policy",
		mcp.WithDescription("Answers a question about the travel insurance policy, citing the pages the answer comes from"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question about the policy"),
		))

	ctxTool := mcp.NewTool("policy_context",
		mcp.WithDescription("Returns the policy excerpts a question would be answered from"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question about the policy"),
		))

	srv := server.NewMCPServer("Policy RAG", "0.1.0", server.WithToolCapabilities(false))
	srv.AddTool(ask, questionHandler(log, assistant.AskPolicy))
	srv.AddTool(ctxTool, questionHandler(log, assistant.Context))

	return srv
}

func questionHandler(log *slog.Logger, fn func(ctx context.Context, question string) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := fn(ctx, q)
		if err != nil {
			log.Error("tool call failed", "tool", request.Params.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(res), nil
	}
}
