package builtin

import (
	"testing"
	"time"

	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/tools"
)

func baseSettings() config.Settings {
	return config.Settings{
		Timeout: 5 * time.Second,
		ToolLimits: config.ToolLimits{
			WebMaxBytes:   config.DefaultWebBytes,
			ShellMaxBytes: config.DefaultShellBytes,
			MaxFileBytes:  config.DefaultMaxFileBytes,
		},
	}
}

func TestKeylessToolsAlwaysRegistered(t *testing.T) {
	m := tools.NewManager(tools.Config{}, All(baseSettings())...)
	for _, name := range []string{"read_file", "write_file", "list_dir", "grep", "glob", "bash", "save_http_file", "fetch_web"} {
		if _, ok := m.GetTool(name); !ok {
			t.Fatalf("expected %s to be registered", name)
		}
	}
	for _, name := range []string{"search_with_tavily", "search_with_jina", "read_web_with_jina", "screenshot", "search_image", "generate_image_with_flux"} {
		if _, ok := m.GetTool(name); ok {
			t.Fatalf("%s should be skipped without its api key", name)
		}
	}
}

func TestKeyedToolsRegisteredWhenConfigured(t *testing.T) {
	s := baseSettings()
	s.TavilyAPIKey = "tv"
	s.JinaAPIKey = "jn"
	s.URLBoxAPIKey = "ub"
	s.PixabayAPIKey = "px"
	s.BFLAPIKey = "bfl"

	m := tools.NewManager(tools.Config{}, All(s)...)
	for _, name := range []string{"search_with_tavily", "search_with_jina", "read_web_with_jina", "screenshot", "search_image", "generate_image_with_flux"} {
		if _, ok := m.GetTool(name); !ok {
			t.Fatalf("expected %s to be registered", name)
		}
	}
}

func TestScopeCoverage(t *testing.T) {
	s := baseSettings()
	s.BFLAPIKey = "bfl"
	m := tools.NewManager(tools.Config{}, All(s)...)

	if len(m.ReadTools()) == 0 || len(m.WriteTools()) == 0 || len(m.ExecTools()) == 0 || len(m.WebTools()) == 0 || len(m.GenerationTools()) == 0 {
		t.Fatalf("expected every scope to be covered by builtin tools")
	}
	if len(m.SubAgentTools()) >= m.Len() {
		t.Fatalf("sub-agent listing should exclude write/exec-only tools")
	}
}
