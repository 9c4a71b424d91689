package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Scope tags the kind of side effect a tool may have. It is self-declared
// by the tool and used only for filtering, never for enforcement.
type Scope string

const (
	ScopeRead       Scope = "read"
	ScopeWrite      Scope = "write"
	ScopeExec       Scope = "exec"
	ScopeWeb        Scope = "web"
	ScopeGeneration Scope = "generation"
)

// Tool describes a callable tool. Implementations must be comparable
// (use pointer receivers) so the manager can deduplicate by identity.
type Tool interface {
	Name() string
	Description() string
	Scopes() []Scope
	Schema() map[string]any
	Execute(ctx context.Context, input json.RawMessage) (any, error)
}

// Definition is the contract object handed to the agent runtime for one
// tool: name, (possibly truncated) description, and parameter schema.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"parameters"`
}

// ErrorResult is the structured failure payload returned by tools for
// expected failure modes (network errors, HTTP errors, missing results).
// Contract errors still surface as Go errors from Execute.
type ErrorResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Errorf builds an ErrorResult from a format string.
func Errorf(format string, args ...any) ErrorResult {
	return ErrorResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

func hasScope(t Tool, scope Scope) bool {
	for _, s := range t.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}
