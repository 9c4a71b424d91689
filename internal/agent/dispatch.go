package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared/constant"
	"go.uber.org/zap"

	"github.com/ai-zerolab/lightblue/internal/llm"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

const dispatchMaxSteps = 8

// DispatchTool launches a nested agent restricted to read and web tools.
// It lets the outer model delegate research subtasks without growing its
// own context with raw tool output.
type DispatchTool struct {
	agent *Agent
}

// DispatchResult is the sub-agent's report.
type DispatchResult struct {
	Success bool   `json:"success"`
	Report  string `json:"report,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (t *DispatchTool) Name() string { return "dispatch_agent" }

func (t *DispatchTool) Description() string {
	return "Launch a sub-agent with read-only and web tools to complete a self-contained research task. " +
		"The sub-agent returns a compact report. Use it to keep the main conversation small."
}

func (t *DispatchTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeRead} }

func (t *DispatchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task": map[string]any{
				"type":        "string",
				"description": "Complete description of the task for the sub-agent.",
			},
		},
		"required": []string{"task"},
	}
}

func (t *DispatchTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args struct {
		Task string `json:"task"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(args.Task) == "" {
		return nil, fmt.Errorf("task is required")
	}

	report, err := t.agent.runSubAgent(ctx, args.Task)
	if err != nil {
		return DispatchResult{Success: false, Error: err.Error()}, nil
	}
	return DispatchResult{Success: true, Report: report}, nil
}

// runSubAgent drives a bounded tool loop over the sub-agent listing.
// The dispatch tool itself is removed from that listing: sub-agents get
// leaf tools only and must not spawn further sub-agents.
func (a *Agent) runSubAgent(ctx context.Context, task string) (string, error) {
	var defs []tools.Definition
	for _, def := range a.manager.SubAgentTools() {
		if def.Name == "dispatch_agent" {
			continue
		}
		defs = append(defs, def)
	}
	allowed := make(map[string]bool, len(defs))
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		allowed[def.Name] = true
		names = append(names, def.Name)
	}

	model := a.cfg.SubAgentModel
	if model == "" {
		model = a.cfg.DefaultModel
	}
	a.logger.Debug("sub-agent started", zap.String("model", model), zap.Int("tools", len(defs)))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(subAgentSystemPrompt()),
		openai.DeveloperMessage("You can call tools: " + strings.Join(names, ", ") + "."),
		openai.UserMessage(task),
	}
	toolDefs := tools.OpenAITools(defs)
	toolChoice := openai.ChatCompletionToolChoiceOptionUnionParam{}
	if len(toolDefs) > 0 {
		toolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")}
	}

	for step := 0; step < dispatchMaxSteps; step++ {
		response, err := a.client.Create(ctx, llm.Request{Model: model, Messages: messages, Tools: toolDefs, ToolChoice: toolChoice})
		if err != nil {
			return "", err
		}
		if len(response.ToolCalls) == 0 {
			return strings.TrimSpace(response.Content), nil
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
			var payload any
			if !allowed[call.Name] {
				payload = map[string]string{"error": "tool not available to sub-agent: " + call.Name}
			} else if tool, ok := a.manager.GetTool(call.Name); !ok {
				payload = map[string]string{"error": "unknown tool: " + call.Name}
			} else {
				out, err := tool.Execute(ctx, call.Arguments)
				if err != nil {
					payload = map[string]string{"error": err.Error()}
				} else {
					payload = out
				}
			}
			payloadBytes, _ := json.Marshal(payload)
			messages = append(messages, openai.ToolMessage(string(payloadBytes), call.ID))
		}
	}
	return "", fmt.Errorf("sub-agent exceeded %d steps", dispatchMaxSteps)
}
