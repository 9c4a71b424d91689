// Package mcp loads the external MCP-server configuration file referenced
// by settings. Servers listed there are launched by the agent runtime, not
// by this module.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerConfig describes how to launch a single MCP server.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Config is the full MCP configuration file.
type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// Load reads an MCP configuration file. A missing file is not an error:
// it means no external servers are configured.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{MCPServers: map[string]ServerConfig{}}, nil
		}
		return nil, fmt.Errorf("failed to read mcp config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mcp config: %w", err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerConfig{}
	}
	for name, server := range cfg.MCPServers {
		if server.Command == "" {
			return nil, fmt.Errorf("mcp server %q has no command", name)
		}
	}
	return &cfg, nil
}
