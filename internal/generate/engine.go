// Package generate drives the model through the two-pass tool
// protocol: one completion with tools advertised, tool execution, then
// at most one follow-up completion without tools. The model never gets
// a second round of tool calls.
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/coursepilot/coursepilot/internal/provider"
)

// ToolRunner advertises tool definitions and executes calls. Execute
// always returns text; failures surface as error text the model can
// read.
type ToolRunner interface {
	Definitions() []provider.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) string
}

// Engine generates answers through a provider client.
type Engine struct {
	client  provider.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates an Engine. A nil limiter gets a default of 10 requests
// per second with a burst of 30.
func New(client provider.Client, limiter *rate.Limiter, logger *slog.Logger) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("provider client is required")
	}
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{client: client, limiter: limiter, logger: logger}, nil
}

// Generate answers a query. history is pre-formatted prior
// conversation text and may be empty; tools may be nil, disabling the
// tool pass entirely.
func (e *Engine) Generate(ctx context.Context, systemPrompt, history, query string, tools ToolRunner) (string, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []provider.Message{{Role: provider.RoleUser, Text: query}}

	req := provider.Request{System: system, Messages: messages}
	if tools != nil {
		req.Tools = tools.Definitions()
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	resp, err := e.client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}

	if tools == nil || len(resp.ToolCalls) == 0 {
		return resp.Text, nil
	}

	// Echo the model's tool-use turn back, then supply results in the
	// order the calls were made.
	messages = append(messages, provider.Message{
		Role:      provider.RoleAssistant,
		Text:      resp.Text,
		ToolCalls: resp.ToolCalls,
	})

	results := make([]provider.ToolResult, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		e.logger.Debug("executing tool", "tool", call.Name)
		output := tools.Execute(ctx, call.Name, call.Args)
		results = append(results, provider.ToolResult{Name: call.Name, Output: output})
	}
	messages = append(messages, provider.Message{Role: provider.RoleTool, ToolResults: results})

	// Second pass carries no tool definitions, so the model must
	// answer with text.
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	final, err := e.client.Complete(ctx, provider.Request{System: system, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("generate final response: %w", err)
	}
	return final.Text, nil
}
