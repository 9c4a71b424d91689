// Package local contains the filesystem and shell tools that cover the
// read, write, and exec scopes.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

// ReadFileTool reads a file with optional line offset and limit.
type ReadFileTool struct {
	maxBytes int
}

// NewReadFileTool constructs the read_file tool.
func NewReadFileTool(maxBytes int) *ReadFileTool {
	return &ReadFileTool{maxBytes: maxBytes}
}

func (r *ReadFileTool) Name() string { return "read_file" }

func (r *ReadFileTool) Description() string {
	return "Reads a file from the local filesystem. The file_path parameter must be an absolute path. Optionally specify a line offset and limit for long files."
}

func (r *ReadFileTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeRead} }

func (r *ReadFileTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path":   map[string]any{"type": "string", "description": "Absolute path to the file to read"},
			"line_offset": map[string]any{"type": "integer", "description": "Line number to start reading from (0-indexed)", "minimum": 0},
			"line_limit":  map[string]any{"type": "integer", "description": "Maximum number of lines to read", "minimum": 1},
		},
		"required":             []string{"file_path"},
		"additionalProperties": false,
	}
}

type readFileInput struct {
	FilePath   string `json:"file_path"`
	LineOffset int    `json:"line_offset"`
	LineLimit  int    `json:"line_limit"`
}

// ReadFileResult carries file content and truncation info.
type ReadFileResult struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
	Truncated bool   `json:"truncated"`
}

func (r *ReadFileTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args readFileInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.FilePath) == "" {
		return nil, errors.New("file_path is required")
	}
	if args.LineLimit <= 0 {
		args.LineLimit = 2000
	}

	data, err := os.ReadFile(args.FilePath)
	if err != nil {
		return tools.Errorf("failed to read %s: %s", args.FilePath, err), nil
	}
	if r.maxBytes > 0 && len(data) > r.maxBytes {
		data = data[:r.maxBytes]
	}

	lines := strings.Split(string(data), "\n")
	truncated := false
	if args.LineOffset > 0 {
		if args.LineOffset >= len(lines) {
			lines = nil
		} else {
			lines = lines[args.LineOffset:]
		}
	}
	if len(lines) > args.LineLimit {
		lines = lines[:args.LineLimit]
		truncated = true
	}

	return ReadFileResult{
		Path:      args.FilePath,
		Content:   strings.Join(lines, "\n"),
		LineCount: len(lines),
		Truncated: truncated,
	}, nil
}

// WriteFileTool writes content to a file, creating parent directories.
type WriteFileTool struct{}

// NewWriteFileTool constructs the write_file tool.
func NewWriteFileTool() *WriteFileTool { return &WriteFileTool{} }

func (w *WriteFileTool) Name() string { return "write_file" }

func (w *WriteFileTool) Description() string {
	return "Writes a file to the local filesystem, overwriting any existing file. Parent directories are created as needed."
}

func (w *WriteFileTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWrite} }

func (w *WriteFileTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Absolute path to the file to write"},
			"content":   map[string]any{"type": "string", "description": "Content to write to the file"},
		},
		"required":             []string{"file_path", "content"},
		"additionalProperties": false,
	}
}

type writeFileInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// WriteFileResult reports a completed (or failed) write.
type WriteFileResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Size    int    `json:"size,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

func (w *WriteFileTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args writeFileInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.FilePath) == "" {
		return nil, errors.New("file_path is required")
	}

	if err := os.MkdirAll(filepath.Dir(args.FilePath), 0o755); err != nil {
		return writeFailure(args.FilePath, err), nil
	}
	if err := os.WriteFile(args.FilePath, []byte(args.Content), 0o644); err != nil {
		return writeFailure(args.FilePath, err), nil
	}
	return WriteFileResult{
		Success: true,
		Path:    args.FilePath,
		Size:    len(args.Content),
		Message: fmt.Sprintf("File successfully saved to %s", args.FilePath),
	}, nil
}

func writeFailure(path string, err error) WriteFileResult {
	return WriteFileResult{
		Success: false,
		Error:   err.Error(),
		Message: fmt.Sprintf("Failed to save file to %s", path),
	}
}

// ListDirTool lists directory entries.
type ListDirTool struct{}

// NewListDirTool constructs the list_dir tool.
func NewListDirTool() *ListDirTool { return &ListDirTool{} }

func (l *ListDirTool) Name() string { return "list_dir" }

func (l *ListDirTool) Description() string {
	return "Lists files and directories in a given path. The path parameter must be an absolute path."
}

func (l *ListDirTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeRead} }

func (l *ListDirTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":           map[string]any{"type": "string", "description": "Directory path"},
			"include_hidden": map[string]any{"type": "boolean", "description": "Whether to include hidden files"},
		},
		"required":             []string{"path"},
		"additionalProperties": false,
	}
}

type listDirInput struct {
	Path          string `json:"path"`
	IncludeHidden bool   `json:"include_hidden"`
}

// DirEntry is one listed entry.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

func (l *ListDirTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args listDirInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Path) == "" {
		return nil, errors.New("path is required")
	}

	entries, err := os.ReadDir(args.Path)
	if err != nil {
		return tools.Errorf("failed to list %s: %s", args.Path, err), nil
	}
	out := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		if !args.IncludeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		var size int64
		if info, err := entry.Info(); err == nil && !entry.IsDir() {
			size = info.Size()
		}
		out = append(out, DirEntry{Name: entry.Name(), IsDir: entry.IsDir(), Size: size})
	}
	return out, nil
}
