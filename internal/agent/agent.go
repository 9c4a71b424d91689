package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared/constant"
	"go.uber.org/zap"

	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/events"
	"github.com/ai-zerolab/lightblue/internal/llm"
	"github.com/ai-zerolab/lightblue/internal/render"
	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/util"
	"github.com/ai-zerolab/lightblue/internal/version"
)

// RunResult captures run output for JSON mode.
type RunResult struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"timestamp_start"`
	FinishedAt  time.Time        `json:"timestamp_end"`
	Prompt      string           `json:"prompt"`
	Model       string           `json:"model"`
	StepsUsed   int              `json:"steps_used"`
	Status      string           `json:"status"`
	FinalAnswer string           `json:"final_answer"`
	ToolCalls   []ToolCallRecord `json:"tool_calls"`
	Events      []events.Event   `json:"events"`
}

// ToolCallRecord records tool call history.
type ToolCallRecord struct {
	ToolName   string    `json:"tool_name"`
	Input      any       `json:"input"`
	Output     any       `json:"output"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Agent runs the orchestration loop over the tool manager's listings.
type Agent struct {
	client   llm.Client
	manager  *tools.Manager
	renderer render.Renderer
	logger   *zap.Logger
	cfg      config.Settings
}

// NewAgent constructs an Agent and registers the dispatch_agent tool with
// the manager.
func NewAgent(client llm.Client, manager *tools.Manager, renderer render.Renderer, logger *zap.Logger, cfg config.Settings) *Agent {
	a := &Agent{client: client, manager: manager, renderer: renderer, logger: logger, cfg: cfg}
	manager.Register(&DispatchTool{agent: a})
	return a
}

// Run executes the agent loop for a single prompt.
func (a *Agent) Run(ctx context.Context, prompt string) (RunResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	result := RunResult{
		RunID:     runID,
		StartedAt: started,
		Prompt:    prompt,
		Model:     a.cfg.DefaultModel,
		Status:    "failure",
	}

	emit := func(event events.Event) {
		result.Events = append(result.Events, event)
		if a.renderer != nil {
			a.renderer.Emit(event)
		}
	}

	defs := a.manager.AllTools()
	emit(events.Event{Type: events.RunStarted, Timestamp: time.Now(), Payload: events.RunStartedPayload{
		Version:   version.Version,
		Model:     a.cfg.DefaultModel,
		RunID:     runID,
		ToolCount: len(defs),
		StartedAt: started,
	}})

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt()),
		openai.DeveloperMessage(developerPrompt(a.manager.Names())),
		openai.UserMessage(prompt),
	}

	toolDefs := tools.OpenAITools(defs)
	toolChoice := openai.ChatCompletionToolChoiceOptionUnionParam{}
	if len(toolDefs) > 0 {
		toolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")}
	}

	steps := 0
	for steps < a.cfg.MaxSteps {
		steps++
		response, err := a.client.Create(ctx, llm.Request{Model: a.cfg.DefaultModel, Messages: messages, Tools: toolDefs, ToolChoice: toolChoice})
		if err != nil {
			a.logger.Error("model request failed", zap.Error(err))
			emit(events.Event{Type: events.RunError, Timestamp: time.Now(), Payload: events.RunErrorPayload{Message: err.Error()}})
			result.StepsUsed = steps
			result.FinishedAt = time.Now()
			return result, err
		}

		if len(response.ToolCalls) == 0 {
			finalAnswer := strings.TrimSpace(response.Content)
			if !a.cfg.JSON {
				streamed, err := a.streamFinal(ctx, llm.Request{Model: a.cfg.DefaultModel, Messages: messages, Tools: toolDefs, ToolChoice: toolChoice}, emit)
				if err != nil {
					a.logger.Error("streaming failed", zap.Error(err))
				} else if strings.TrimSpace(streamed) != "" {
					finalAnswer = streamed
				}
			}
			result.FinalAnswer = strings.TrimSpace(finalAnswer)
			result.Status = "success"
			result.StepsUsed = steps
			result.FinishedAt = time.Now()
			emit(events.Event{Type: events.FinalAnswerReady, Timestamp: time.Now(), Payload: events.FinalAnswerPayload{Answer: result.FinalAnswer}})
			emit(events.Event{Type: events.RunFinished, Timestamp: time.Now(), Payload: events.RunFinishedPayload{Status: result.Status, FinishedAt: result.FinishedAt}})
			return result, nil
		}

		toolCallParams := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(response.ToolCalls))
		for _, call := range response.ToolCalls {
			toolCallParams = append(toolCallParams, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(call.Arguments),
					},
					Type: constant.Function("function"),
				},
			})
		}
		assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCallParams}
		messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		for _, call := range response.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, call, &result, emit))
		}
	}

	warning := "Max steps reached. Provide the best possible partial answer and include a warning."
	messages = append(messages, openai.DeveloperMessage(warning))
	finalAnswer := "Max steps reached; unable to complete."
	if !a.cfg.JSON {
		streamed, err := a.streamFinal(ctx, llm.Request{Model: a.cfg.DefaultModel, Messages: messages, Tools: toolDefs, ToolChoice: toolChoice}, emit)
		if err == nil && strings.TrimSpace(streamed) != "" {
			finalAnswer = streamed
		}
	}
	if !strings.Contains(strings.ToLower(finalAnswer), "max steps") {
		finalAnswer = "Max steps reached. " + finalAnswer
	}
	result.FinalAnswer = strings.TrimSpace(finalAnswer)
	result.Status = "partial"
	result.StepsUsed = steps
	result.FinishedAt = time.Now()
	emit(events.Event{Type: events.FinalAnswerReady, Timestamp: time.Now(), Payload: events.FinalAnswerPayload{Answer: result.FinalAnswer}})
	emit(events.Event{Type: events.RunFinished, Timestamp: time.Now(), Payload: events.RunFinishedPayload{Status: result.Status, FinishedAt: result.FinishedAt}})
	return result, errors.New("max steps reached")
}

// executeToolCall runs one tool call and returns the tool message to
// append to the conversation.
func (a *Agent) executeToolCall(ctx context.Context, call llm.ToolCall, result *RunResult, emit func(events.Event)) openai.ChatCompletionMessageParamUnion {
	tool, ok := a.manager.GetTool(call.Name)
	if !ok {
		message := "unknown tool: " + call.Name
		emit(events.Event{Type: events.ToolCallFailed, Timestamp: time.Now(), Payload: events.ToolCallFinishedPayload{ToolName: call.Name, Status: "error", Preview: message}})
		payloadBytes, _ := json.Marshal(map[string]string{"error": message})
		return openai.ToolMessage(string(payloadBytes), call.ID)
	}

	inputSanitized := sanitizeInput(call.Arguments)
	start := time.Now()
	emit(events.Event{Type: events.ToolCallStarted, Timestamp: start, Payload: events.ToolCallStartedPayload{ToolName: call.Name, Input: inputSanitized, StartedAt: start}})

	payload, err := tool.Execute(ctx, call.Arguments)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		out := map[string]any{"error": err.Error(), "duration_ms": duration}
		result.ToolCalls = append(result.ToolCalls, ToolCallRecord{ToolName: call.Name, Input: inputSanitized, Output: out, Status: "error", StartedAt: start, DurationMs: duration})
		emit(events.Event{Type: events.ToolCallFailed, Timestamp: time.Now(), Payload: events.ToolCallFinishedPayload{ToolName: call.Name, Status: "error", Preview: err.Error(), DurationMs: duration}})
		payloadBytes, _ := json.Marshal(out)
		return openai.ToolMessage(string(payloadBytes), call.ID)
	}

	result.ToolCalls = append(result.ToolCalls, ToolCallRecord{ToolName: call.Name, Input: inputSanitized, Output: payload, Status: "success", StartedAt: start, DurationMs: duration})
	payloadBytes, _ := json.Marshal(payload)
	emit(events.Event{Type: events.ToolCallFinished, Timestamp: time.Now(), Payload: events.ToolCallFinishedPayload{
		ToolName:   call.Name,
		Status:     "success",
		Output:     payload,
		Preview:    util.Preview(string(payloadBytes), 6, 1000),
		DurationMs: duration,
	}})
	return openai.ToolMessage(string(payloadBytes), call.ID)
}

func (a *Agent) streamFinal(ctx context.Context, req llm.Request, emit func(events.Event)) (string, error) {
	var builder strings.Builder
	_, err := a.client.Stream(ctx, req, func(delta string) {
		emit(events.Event{Type: events.ModelDelta, Timestamp: time.Now(), Payload: events.ModelDeltaPayload{Delta: delta}})
		builder.WriteString(delta)
	})
	if err != nil {
		return builder.String(), err
	}
	return builder.String(), nil
}

func sanitizeInput(args json.RawMessage) any {
	if len(args) == 0 {
		return map[string]any{}
	}
	var data any
	if err := json.Unmarshal(args, &data); err != nil {
		return map[string]any{"raw": util.RedactSecrets(string(args))}
	}
	if bytes, err := json.Marshal(data); err == nil {
		return util.RedactSecrets(string(bytes))
	}
	return data
}
