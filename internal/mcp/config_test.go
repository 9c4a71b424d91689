package mcp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "mcp.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.MCPServers) != 0 {
		t.Fatalf("expected no servers, got %d", len(cfg.MCPServers))
	}
}

func TestLoadParsesServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	content := `{"mcpServers": {"files": {"command": "mcp-files", "args": ["--root", "/tmp"], "env": {"DEBUG": "1"}}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	server, ok := cfg.MCPServers["files"]
	if !ok || server.Command != "mcp-files" || len(server.Args) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsServerWithoutCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	if err := os.WriteFile(path, []byte(`{"mcpServers": {"bad": {}}}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
