package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

func TestWriteThenReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "note.txt")

	write := NewWriteFileTool()
	input, _ := json.Marshal(map[string]any{"file_path": path, "content": "line one\nline two"})
	payload, err := write.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writeResult := payload.(WriteFileResult)
	if !writeResult.Success || writeResult.Size != len("line one\nline two") {
		t.Fatalf("unexpected write result: %+v", writeResult)
	}

	read := NewReadFileTool(0)
	input, _ = json.Marshal(map[string]any{"file_path": path})
	payload, err = read.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	readResult := payload.(ReadFileResult)
	if readResult.Content != "line one\nline two" || readResult.LineCount != 2 {
		t.Fatalf("unexpected read result: %+v", readResult)
	}
}

func TestReadFileMissingIsStructuredFailure(t *testing.T) {
	read := NewReadFileTool(0)
	input, _ := json.Marshal(map[string]any{"file_path": filepath.Join(t.TempDir(), "nope")})
	payload, err := read.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("expected structured failure, got error: %v", err)
	}
	if failure, ok := payload.(tools.ErrorResult); !ok || failure.Success {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestReadFileLineWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.txt")
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("line\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	read := NewReadFileTool(0)
	input, _ := json.Marshal(map[string]any{"file_path": path, "line_offset": 2, "line_limit": 3})
	payload, err := read.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(ReadFileResult)
	if result.LineCount != 3 || !result.Truncated {
		t.Fatalf("unexpected window: %+v", result)
	}
}

func TestListDirSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"visible.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	list := NewListDirTool()
	input, _ := json.Marshal(map[string]any{"path": dir})
	payload, err := list.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries := payload.([]DirEntry)
	if len(entries) != 1 || entries[0].Name != "visible.txt" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestBashBlocksNetworkCommands(t *testing.T) {
	tool := NewBashTool(1024, 5*time.Second)
	input, _ := json.Marshal(map[string]any{"command": "curl https://example.com"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failure, ok := payload.(tools.ErrorResult)
	if !ok || failure.Success || !strings.Contains(failure.Error, "network commands are blocked") {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestBashBlocksDestructiveCommands(t *testing.T) {
	tool := NewBashTool(1024, 5*time.Second)
	input, _ := json.Marshal(map[string]any{"command": "rm -rf /"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failure, ok := payload.(tools.ErrorResult); !ok || failure.Success {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestBashRunsCommand(t *testing.T) {
	tool := NewBashTool(1024, 5*time.Second)
	input, _ := json.Marshal(map[string]any{"command": "echo hello"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := payload.(BashResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if strings.TrimSpace(result.Stdout) != "hello" || result.ExitCode != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
