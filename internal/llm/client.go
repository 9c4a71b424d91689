// Package llm abstracts the chat-completion providers behind a small
// client interface so the agent can run against OpenRouter or a mock.
package llm

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go/v3"
)

// defaultTemperature keeps tool-calling runs close to deterministic.
const defaultTemperature = 0.2

// ToolCall is a function call requested by the model. Arguments is the
// raw JSON the tool will decode itself.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Response is the decoded model turn: final content, or tool calls, or
// both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Request is one chat-completion call. Temperature of 0 means the
// default.
type Request struct {
	Model       string
	Messages    []openai.ChatCompletionMessageParamUnion
	Tools       []openai.ChatCompletionToolUnionParam
	ToolChoice  openai.ChatCompletionToolChoiceOptionUnionParam
	Temperature float64
}

func (r Request) temperature() float64 {
	if r.Temperature > 0 {
		return r.Temperature
	}
	return defaultTemperature
}

// Client is implemented by OpenRouterClient and MockClient.
type Client interface {
	Create(ctx context.Context, req Request) (Response, error)
	Stream(ctx context.Context, req Request, onDelta func(string)) (Response, error)
}
