package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient is a deterministic client for tests and demos. Its first
// response calls list_dir, the second produces a final answer.
type MockClient struct {
	mu    sync.Mutex
	calls int
}

// NewMockClient returns a simple mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Create(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.calls == 1 {
		args, _ := json.Marshal(map[string]any{"path": "/tmp"})
		return Response{ToolCalls: []ToolCall{{ID: "call_1", Name: "list_dir", Arguments: args}}}, nil
	}
	return Response{Content: "Summary: Mock response based on tool results. [tool:list_dir]"}, nil
}

func (m *MockClient) Stream(ctx context.Context, req Request, onDelta func(string)) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content := "Summary: Mock response based on tool results. [tool:list_dir]"
	resp := Response{Content: content}
	if onDelta != nil {
		onDelta(resp.Content)
	}
	return resp, nil
}
