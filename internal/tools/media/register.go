package media

import (
	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

// Register returns the registrar for the media tool family.
func Register(s config.Settings) tools.Registrar {
	return func(m *tools.Manager) error {
		if s.PixabayAPIKey != "" {
			m.Register(NewPixabayTool(s.PixabayAPIKey, s.Timeout))
		}
		if s.BFLAPIKey != "" {
			m.Register(NewFluxTool(s.BFLAPIKey, s.Timeout))
		}
		return nil
	}
}
