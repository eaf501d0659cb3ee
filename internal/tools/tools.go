// Package tools implements the callable tools the model can invoke
// during generation, plus the registry that dispatches calls and
// collects source attributions for the UI.
package tools

import (
	"context"
	"fmt"

	"github.com/coursepilot/coursepilot/internal/provider"
)

// Source attributes a piece of answer material to course content.
// Link is empty when no URL is known for the source.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// Tool is a single callable capability. Implementations are stateless:
// sources are returned per call, never stored on the tool, so one tool
// value can serve concurrent queries.
type Tool interface {
	Definition() provider.ToolDefinition
	Execute(ctx context.Context, args map[string]any) (output string, sources []Source, err error)
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

// intArg reads an optional integer argument. JSON-decoded numbers
// arrive as float64.
func intArg(args map[string]any, key string) (*int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i, nil
	case int:
		i := n
		return &i, nil
	case int64:
		i := int(n)
		return &i, nil
	default:
		return nil, fmt.Errorf("argument %q must be an integer, got %T", key, v)
	}
}
