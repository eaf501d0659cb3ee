package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coursepilot/coursepilot/internal/log"
	"github.com/coursepilot/coursepilot/internal/provider"
)

// mockClient replays scripted responses and records every request.
type mockClient struct {
	responses []*provider.Response
	errs      []error
	requests  []provider.Request
}

func (m *mockClient) Complete(_ context.Context, req provider.Request) (*provider.Response, error) {
	m.requests = append(m.requests, req)
	i := len(m.requests) - 1
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.responses) {
		return nil, errors.New("no scripted response")
	}
	return m.responses[i], nil
}

func (m *mockClient) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

// mockRunner records executed calls and returns canned outputs.
type mockRunner struct {
	defs     []provider.ToolDefinition
	outputs  map[string]string
	executed []string
}

func (m *mockRunner) Definitions() []provider.ToolDefinition { return m.defs }

func (m *mockRunner) Execute(_ context.Context, name string, _ map[string]any) string {
	m.executed = append(m.executed, name)
	if out, ok := m.outputs[name]; ok {
		return out
	}
	return "Tool '" + name + "' not found"
}

func newTestEngine(t *testing.T, client provider.Client) *Engine {
	t.Helper()
	e, err := New(client, nil, log.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func TestGenerateDirectAnswer(t *testing.T) {
	client := &mockClient{responses: []*provider.Response{{Text: "Paris."}}}
	engine := newTestEngine(t, client)
	runner := &mockRunner{defs: []provider.ToolDefinition{{Name: "search_course_content"}}}

	got, err := engine.Generate(context.Background(), "system", "", "capital of France?", runner)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "Paris." {
		t.Errorf("answer = %q", got)
	}
	if len(client.requests) != 1 {
		t.Fatalf("made %d calls, want 1 when no tools are requested", len(client.requests))
	}
	if len(client.requests[0].Tools) != 1 {
		t.Errorf("first call must advertise tools, got %v", client.requests[0].Tools)
	}
	if len(runner.executed) != 0 {
		t.Errorf("no tool should run, got %v", runner.executed)
	}
}

func TestGenerateTwoPassToolFlow(t *testing.T) {
	client := &mockClient{responses: []*provider.Response{
		{ToolCalls: []provider.ToolCall{
			{Name: "search_course_content", Args: map[string]any{"query": "MCP"}},
			{Name: "get_course_outline", Args: map[string]any{"course_name": "MCP"}},
		}},
		{Text: "MCP is a protocol for tool use."},
	}}
	engine := newTestEngine(t, client)
	runner := &mockRunner{
		defs: []provider.ToolDefinition{{Name: "search_course_content"}, {Name: "get_course_outline"}},
		outputs: map[string]string{
			"search_course_content": "[MCP Course - Lesson 1]\ncontent",
			"get_course_outline":    "**Course:** MCP Course",
		},
	}

	got, err := engine.Generate(context.Background(), "system", "", "What is MCP?", runner)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "MCP is a protocol for tool use." {
		t.Errorf("answer = %q", got)
	}

	if len(client.requests) != 2 {
		t.Fatalf("made %d calls, want exactly 2", len(client.requests))
	}
	if len(runner.executed) != 2 || runner.executed[0] != "search_course_content" || runner.executed[1] != "get_course_outline" {
		t.Errorf("tools executed = %v, want call order preserved", runner.executed)
	}

	second := client.requests[1]
	if len(second.Tools) != 0 {
		t.Error("second pass must not advertise tools")
	}
	if len(second.Messages) != 3 {
		t.Fatalf("second pass has %d messages, want user + assistant + tool", len(second.Messages))
	}
	if second.Messages[1].Role != provider.RoleAssistant || len(second.Messages[1].ToolCalls) != 2 {
		t.Errorf("assistant turn = %+v", second.Messages[1])
	}
	results := second.Messages[2].ToolResults
	if len(results) != 2 || results[0].Output != "[MCP Course - Lesson 1]\ncontent" {
		t.Errorf("tool results = %+v", results)
	}
}

func TestGenerateHistoryInSystem(t *testing.T) {
	client := &mockClient{responses: []*provider.Response{{Text: "ok"}}}
	engine := newTestEngine(t, client)

	_, err := engine.Generate(context.Background(), "base prompt", "User: hi\nAssistant: hello", "next", nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	system := client.requests[0].System
	if !strings.HasPrefix(system, "base prompt") {
		t.Errorf("system = %q", system)
	}
	if !strings.Contains(system, "Previous conversation:\nUser: hi") {
		t.Errorf("history missing from system: %q", system)
	}
}

func TestGenerateNoHistoryNoSuffix(t *testing.T) {
	client := &mockClient{responses: []*provider.Response{{Text: "ok"}}}
	engine := newTestEngine(t, client)

	if _, err := engine.Generate(context.Background(), "base prompt", "", "q", nil); err != nil {
		t.Fatal(err)
	}
	if got := client.requests[0].System; got != "base prompt" {
		t.Errorf("system = %q", got)
	}
}

func TestGenerateNilRunnerSkipsTools(t *testing.T) {
	// A scripted tool call with no runner must not trigger a second pass.
	client := &mockClient{responses: []*provider.Response{
		{Text: "partial", ToolCalls: []provider.ToolCall{{Name: "search_course_content"}}},
	}}
	engine := newTestEngine(t, client)

	got, err := engine.Generate(context.Background(), "system", "", "q", nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "partial" || len(client.requests) != 1 {
		t.Errorf("got %q after %d calls", got, len(client.requests))
	}
	if len(client.requests[0].Tools) != 0 {
		t.Error("nil runner must not advertise tools")
	}
}

func TestGenerateFirstPassFailure(t *testing.T) {
	client := &mockClient{errs: []error{errors.New("quota exceeded")}}
	engine := newTestEngine(t, client)

	if _, err := engine.Generate(context.Background(), "s", "", "q", nil); err == nil {
		t.Fatal("provider failure must be a hard error")
	}
}

func TestGenerateSecondPassFailure(t *testing.T) {
	client := &mockClient{
		responses: []*provider.Response{
			{ToolCalls: []provider.ToolCall{{Name: "search_course_content"}}},
			nil,
		},
		errs: []error{nil, errors.New("quota exceeded")},
	}
	engine := newTestEngine(t, client)
	runner := &mockRunner{
		defs:    []provider.ToolDefinition{{Name: "search_course_content"}},
		outputs: map[string]string{"search_course_content": "out"},
	}

	if _, err := engine.Generate(context.Background(), "s", "", "q", runner); err == nil {
		t.Fatal("second-pass failure must be a hard error")
	}
}

func TestGenerateForwardsToolErrorText(t *testing.T) {
	client := &mockClient{responses: []*provider.Response{
		{ToolCalls: []provider.ToolCall{{Name: "bogus"}}},
		{Text: "I could not find that."},
	}}
	engine := newTestEngine(t, client)
	runner := &mockRunner{defs: []provider.ToolDefinition{{Name: "search_course_content"}}}

	got, err := engine.Generate(context.Background(), "s", "", "q", runner)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "I could not find that." {
		t.Errorf("answer = %q", got)
	}

	results := client.requests[1].Messages[2].ToolResults
	if len(results) != 1 || !strings.Contains(results[0].Output, "not found") {
		t.Errorf("error text must reach the model, got %+v", results)
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil, nil, log.NewNop()); err == nil {
		t.Fatal("expected error for nil client")
	}
}
