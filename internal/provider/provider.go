// Package provider defines the model-client contract the generation
// engine drives. Implementations translate the neutral message shapes
// to a concrete API; the engine never sees provider wire types except
// for tool parameter schemas, which stay in genai's schema dialect.
package provider

import (
	"context"

	"google.golang.org/genai"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "model"
	RoleTool      Role = "tool"
)

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult carries a tool's textual output back to the model.
type ToolResult struct {
	Name   string
	Output string
}

// Message is one turn of a conversation. Exactly one of Text,
// ToolCalls or ToolResults is populated depending on Role.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolDefinition describes a callable tool advertised to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// Request is a single completion call. Tools may be nil, in which
// case the model cannot request invocations.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Response is the model's reply. ToolCalls is non-empty when the
// model chose to invoke tools instead of (or before) answering.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Client generates completions and embeddings.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
