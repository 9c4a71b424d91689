package web

import (
	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

// Register returns the registrar for the web tool family. Tools gated on a
// provider API key are silently skipped when the key is absent.
func Register(s config.Settings) tools.Registrar {
	return func(m *tools.Manager) error {
		m.Register(NewSaveTool(s.Timeout))
		m.Register(NewFetchTool(s.Timeout, s.ToolLimits.WebMaxBytes))
		if s.TavilyAPIKey != "" {
			m.Register(NewTavilyTool(s.TavilyAPIKey, s.Timeout))
		}
		if s.JinaAPIKey != "" {
			m.Register(NewJinaSearchTool(s.JinaAPIKey, s.Timeout))
			m.Register(NewJinaReaderTool(s.JinaAPIKey, s.Timeout))
		}
		if s.URLBoxAPIKey != "" {
			m.Register(NewScreenshotTool(s.URLBoxAPIKey, s.Timeout))
		}
		return nil
	}
}
