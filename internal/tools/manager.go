package tools

import (
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// TruncationMarker is appended to descriptions cut down to the configured
// maximum length.
const TruncationMarker = "... (truncated)"

// Registrar contributes zero or more tools to a manager. Registrars decide
// internally whether to construct anything at all; a missing credential
// means the corresponding tools are silently skipped.
type Registrar func(m *Manager) error

// Config controls manager behavior.
type Config struct {
	// MaxDescriptionLength caps tool descriptions in listings. Zero means
	// no truncation. A positive value also enables the query tool.
	MaxDescriptionLength int
	// EnableQueryTool forces the query tool on even without truncation.
	EnableQueryTool bool
	Logger          *zap.Logger
}

// Manager owns the ordered registry of tool instances and serves
// scope-filtered tool lists to the agent runtime.
type Manager struct {
	tools      []Tool
	maxDescLen int
	logger     *zap.Logger
}

// NewManager builds a manager and runs every registrar. A registrar that
// fails or panics is logged and skipped; it never blocks the others.
func NewManager(cfg Config, registrars ...Registrar) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{maxDescLen: cfg.MaxDescriptionLength, logger: logger}
	for _, reg := range registrars {
		m.runRegistrar(reg)
	}
	logger.Info("tools registered", zap.Int("count", len(m.tools)))
	if cfg.EnableQueryTool || cfg.MaxDescriptionLength > 0 {
		logger.Info("enabling query tool", zap.Int("max_description_length", cfg.MaxDescriptionLength))
		m.Register(&QueryTool{manager: m})
	}
	return m
}

func (m *Manager) runRegistrar(reg Registrar) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("tool registrar panicked", zap.Any("panic", r))
		}
	}()
	if err := reg(m); err != nil {
		m.logger.Error("tool registrar failed", zap.Error(err))
	}
}

// Register appends a tool, preserving insertion order. Re-registering the
// same instance is a no-op. Deduplication is by instance identity, not by
// name: two distinct instances sharing a name are both retained and
// GetTool returns whichever was registered first.
func (m *Manager) Register(t Tool) {
	for _, existing := range m.tools {
		if existing == t {
			return
		}
	}
	m.logger.Debug("registering tool", zap.String("tool", t.Name()))
	m.tools = append(m.tools, t)
}

// GetTool returns the first registered tool with the given name.
func (m *Manager) GetTool(name string) (Tool, bool) {
	for _, t := range m.tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Len reports the number of registered tool instances.
func (m *Manager) Len() int { return len(m.tools) }

// Names returns sorted tool names.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.tools))
	for _, t := range m.tools {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

func (m *Manager) list(pred func(Tool) bool) []Definition {
	defs := make([]Definition, 0, len(m.tools))
	for _, t := range m.tools {
		if pred != nil && !pred(t) {
			continue
		}
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: truncateDescription(t.Description(), m.maxDescLen),
			Schema:      t.Schema(),
		})
	}
	return defs
}

// AllTools lists every registered tool in insertion order.
func (m *Manager) AllTools() []Definition { return m.list(nil) }

// ReadTools lists tools declaring the read scope.
func (m *Manager) ReadTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeRead) })
}

// WriteTools lists tools declaring the write scope.
func (m *Manager) WriteTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeWrite) })
}

// ExecTools lists tools declaring the exec scope.
func (m *Manager) ExecTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeExec) })
}

// WebTools lists tools declaring the web scope.
func (m *Manager) WebTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeWeb) })
}

// GenerationTools lists tools declaring the generation scope.
func (m *Manager) GenerationTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeGeneration) })
}

// SubAgentTools lists the tools exposed to a constrained sub-agent role:
// the union of read and web scopes, in insertion order.
func (m *Manager) SubAgentTools() []Definition {
	return m.list(func(t Tool) bool { return hasScope(t, ScopeRead) || hasScope(t, ScopeWeb) })
}

// truncateDescription caps a description at max bytes, appending the
// truncation marker. It never mutates the stored tool; repeated listings
// always truncate from the original description.
func truncateDescription(desc string, max int) string {
	if max <= 0 || len(desc) <= max {
		return desc
	}
	cut := max - len(TruncationMarker)
	if cut < 0 {
		// marker alone would exceed max; hard cut instead
		return desc[:max]
	}
	return desc[:cut] + TruncationMarker
}

// OpenAITools converts definitions to the OpenAI function-tool schema.
func OpenAITools(defs []Definition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        def.Name,
					Description: param.NewOpt(def.Description),
					Parameters:  def.Schema,
					Strict:      param.NewOpt(true),
				},
			},
		})
	}
	return out
}
