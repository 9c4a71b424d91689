package local

import (
	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

// Register returns the registrar for the local tool family. These tools
// need no credentials and are always available.
func Register(s config.Settings) tools.Registrar {
	return func(m *tools.Manager) error {
		m.Register(NewReadFileTool(s.ToolLimits.MaxFileBytes))
		m.Register(NewWriteFileTool())
		m.Register(NewListDirTool())
		m.Register(NewGrepTool(s.ToolLimits.ShellMaxBytes))
		m.Register(NewGlobTool())
		m.Register(NewBashTool(s.ToolLimits.ShellMaxBytes, s.Timeout))
		return nil
	}
}
