// Package gemini implements the provider contract against the Gemini
// API using the official google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/coursepilot/coursepilot/internal/provider"
)

const defaultEmbedDimension int32 = 768

// Config carries the Gemini connection and model settings.
type Config struct {
	APIKey        string
	Model         string
	EmbedderModel string
	Temperature   float32
	MaxTokens     int32

	// EmbedDimension truncates embeddings server-side. Zero means
	// the default 768, matching the vector columns in the store.
	EmbedDimension int32
}

// Client calls the Gemini API. It is safe for concurrent use.
type Client struct {
	client   *genai.Client
	model    string
	embedder string
	temp     float32
	maxTok   int32
	embedDim int32
	logger   *slog.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" || cfg.EmbedderModel == "" {
		return nil, errors.New("gemini: model names are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dim := cfg.EmbedDimension
	if dim == 0 {
		dim = defaultEmbedDimension
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:   gc,
		model:    cfg.Model,
		embedder: cfg.EmbedderModel,
		temp:     cfg.Temperature,
		maxTok:   cfg.MaxTokens,
		embedDim: dim,
		logger:   logger,
	}, nil
}

// Complete performs one generation call. Tool calls in the response
// are returned to the caller; this client never executes tools itself.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	contents, err := toContents(req.Messages)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temp),
		MaxOutputTokens: c.maxTok,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	out := &provider.Response{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, provider.ToolCall{Name: fc.Name, Args: fc.Args})
	}
	c.logger.Debug("completion finished", "model", c.model, "tool_calls", len(out.ToolCalls))
	return out, nil
}

// Embed returns one vector per input text, truncated to the configured
// dimensionality. Inputs are embedded in a single batch call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dim := c.embedDim
	resp, err := c.client.Models.EmbedContent(ctx, c.embedder, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: embed content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("gemini: empty embedding at index %d", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

// toContents rebuilds the genai conversation from neutral messages.
// Tool results travel in a user-role content per the Gemini protocol.
func toContents(messages []provider.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case provider.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		case provider.RoleAssistant:
			var parts []*genai.Part
			if m.Text != "" {
				parts = append(parts, genai.NewPartFromText(m.Text))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: tc.Args},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case provider.RoleTool:
			var parts []*genai.Part
			for _, tr := range m.ToolResults {
				parts = append(parts, genai.NewPartFromFunctionResponse(tr.Name, map[string]any{
					"output": tr.Output,
				}))
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
		default:
			return nil, fmt.Errorf("gemini: unknown message role %q", m.Role)
		}
	}
	return contents, nil
}
