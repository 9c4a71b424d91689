package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSearchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go":         "package main\n\nfunc main() {\n\tprintln(\"needle\")\n}\n",
		"notes.txt":       "nothing to see\n",
		"sub/helper.go":   "package sub\n\n// needle lives here too\n",
		".hidden/skip.go": "needle in hidden dir\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}
	return dir
}

func TestGrepFindsMatches(t *testing.T) {
	dir := writeSearchFixture(t)
	tool := &GrepTool{maxBytes: 4096}

	input, _ := json.Marshal(map[string]any{"pattern": "needle", "path": dir})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(GrepResult)
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", result.Matches)
	}
	for _, match := range result.Matches {
		if strings.Contains(match, ".hidden") {
			t.Fatalf("hidden dir should be skipped: %q", match)
		}
	}
}

func TestGrepIncludeFilter(t *testing.T) {
	dir := writeSearchFixture(t)
	tool := &GrepTool{maxBytes: 4096}

	input, _ := json.Marshal(map[string]any{"pattern": "needle", "path": dir, "include": "*.go"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(GrepResult)
	for _, match := range result.Matches {
		if strings.Contains(match, ".txt") {
			t.Fatalf("include filter leaked: %q", match)
		}
	}
}

func TestGrepMaxResults(t *testing.T) {
	dir := writeSearchFixture(t)
	tool := &GrepTool{maxBytes: 4096}

	input, _ := json.Marshal(map[string]any{"pattern": "needle", "path": dir, "max_results": 1})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(GrepResult)
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
}

func TestGrepRequiresPattern(t *testing.T) {
	tool := &GrepTool{}
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for missing pattern")
	}
}

func TestGlobSortsByModTime(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "older.go")
	newer := filepath.Join(dir, "sub", "newer.go")
	if err := os.WriteFile(older, []byte("package a\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(newer), 0o755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(newer, []byte("package b\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}

	tool := NewGlobTool()
	input, _ := json.Marshal(map[string]any{"pattern": "**/*.go", "path": dir})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(GlobResult)
	if len(result.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %+v", result.Paths)
	}
	if result.Paths[0] != newer {
		t.Fatalf("expected newest first, got %+v", result.Paths)
	}
}

func TestGlobNoMatches(t *testing.T) {
	tool := NewGlobTool()
	input, _ := json.Marshal(map[string]any{"pattern": "*.zig", "path": t.TempDir()})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result := payload.(GlobResult); len(result.Paths) != 0 {
		t.Fatalf("expected no paths, got %+v", result.Paths)
	}
}
