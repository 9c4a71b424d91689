package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// QueryTool lets the model fetch a tool's full description when listings
// truncate it, trading a fixed prompt cost for an occasional extra round
// trip.
type QueryTool struct {
	manager *Manager
}

func (q *QueryTool) Name() string { return "query_tool" }

func (q *QueryTool) Description() string {
	return "For tool's description is truncated, before calling the tool you need to use this tool to get the full description of the tool."
}

func (q *QueryTool) Scopes() []Scope { return []Scope{ScopeRead} }

func (q *QueryTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool_name": map[string]any{"type": "string", "description": "Name of the tool to describe"},
		},
		"required":             []string{"tool_name"},
		"additionalProperties": false,
	}
}

type queryInput struct {
	ToolName string `json:"tool_name"`
}

// Execute returns the untruncated description for the named tool.
func (q *QueryTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args queryInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.ToolName) == "" {
		return nil, errors.New("tool_name is required")
	}
	tool, ok := q.manager.GetTool(args.ToolName)
	if !ok {
		return "No tool found", nil
	}
	return tool.Description(), nil
}
