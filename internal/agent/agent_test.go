package agent

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/llm"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

type fakeListTool struct{}

func (f fakeListTool) Name() string              { return "list_dir" }
func (f fakeListTool) Description() string       { return "fake directory listing" }
func (f fakeListTool) Scopes() []tools.Scope     { return []tools.Scope{tools.ScopeRead} }
func (f fakeListTool) Schema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}, "required": []string{"path"}}
}
func (f fakeListTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	return map[string]any{"entries": []string{"a.txt"}}, nil
}

func newTestManager(t *testing.T) *tools.Manager {
	t.Helper()
	return tools.NewManager(tools.Config{}, func(m *tools.Manager) error {
		m.Register(fakeListTool{})
		return nil
	})
}

func TestAgentRunWithMock(t *testing.T) {
	logger := zap.NewNop()
	cfg := config.Settings{DefaultModel: config.DefaultModel, MaxSteps: 4, JSON: true}
	client := llm.NewMockClient()
	ag := NewAgent(client, newTestManager(t), nil, logger, cfg)

	result, err := ag.Run(context.Background(), "list my files")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FinalAnswer == "" {
		t.Fatalf("expected final answer")
	}
	if result.Status != "success" {
		t.Fatalf("expected success, got %q", result.Status)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0].ToolName != "list_dir" {
		t.Fatalf("expected one list_dir call, got %+v", result.ToolCalls)
	}
	if result.RunID == "" {
		t.Fatalf("expected run id")
	}
}

func TestAgentRegistersDispatchTool(t *testing.T) {
	cfg := config.Settings{DefaultModel: config.DefaultModel, MaxSteps: 2, JSON: true}
	manager := newTestManager(t)
	NewAgent(llm.NewMockClient(), manager, nil, zap.NewNop(), cfg)

	if _, ok := manager.GetTool("dispatch_agent"); !ok {
		t.Fatalf("expected dispatch_agent to be registered")
	}
}

func TestAgentMaxStepsPartial(t *testing.T) {
	cfg := config.Settings{DefaultModel: config.DefaultModel, MaxSteps: 1, JSON: true}
	manager := newTestManager(t)
	ag := NewAgent(llm.NewMockClient(), manager, nil, zap.NewNop(), cfg)

	result, err := ag.Run(context.Background(), "list my files")
	if err == nil {
		t.Fatalf("expected max steps error")
	}
	if result.Status != "partial" {
		t.Fatalf("expected partial status, got %q", result.Status)
	}
}

// dispatchingClient always asks for dispatch_agent, like a model stuck on
// delegation.
type dispatchingClient struct{}

func (dispatchingClient) Create(ctx context.Context, req llm.Request) (llm.Response, error) {
	args, _ := json.Marshal(map[string]any{"task": "delegate again"})
	return llm.Response{ToolCalls: []llm.ToolCall{{ID: "call_d", Name: "dispatch_agent", Arguments: args}}}, nil
}

func (dispatchingClient) Stream(ctx context.Context, req llm.Request, onDelta func(string)) (llm.Response, error) {
	return llm.Response{Content: "done"}, nil
}

func TestSubAgentCannotDispatchItself(t *testing.T) {
	cfg := config.Settings{DefaultModel: config.DefaultModel, MaxSteps: 2, JSON: true}
	ag := NewAgent(dispatchingClient{}, newTestManager(t), nil, zap.NewNop(), cfg)

	out, err := ag.runSubAgent(context.Background(), "research something")
	if err == nil {
		t.Fatalf("expected sub-agent step-limit error, got report %q", out)
	}

	// The nested loop offers leaf tools only.
	dispatch := &DispatchTool{agent: ag}
	payload, err := dispatch.Execute(context.Background(), json.RawMessage(`{"task":"research something"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := payload.(DispatchResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if result.Success {
		t.Fatalf("expected failure when the model only delegates")
	}
}

func TestDispatchToolRequiresTask(t *testing.T) {
	cfg := config.Settings{DefaultModel: config.DefaultModel, MaxSteps: 2, JSON: true}
	ag := NewAgent(llm.NewMockClient(), newTestManager(t), nil, zap.NewNop(), cfg)
	dispatch := &DispatchTool{agent: ag}

	if _, err := dispatch.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for empty task")
	}
}
