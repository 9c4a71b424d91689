package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveToolWritesFileToNestedDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello lightblue"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "nested", "deep", "out.txt")
	tool := NewSaveTool(5 * time.Second)
	input, _ := json.Marshal(map[string]any{"url": server.URL, "save_path": dest})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := payload.(SaveResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Path != dest || result.Size != len("hello lightblue") || result.ContentType != "text/plain" {
		t.Fatalf("unexpected result: %+v", result)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "hello lightblue" {
		t.Fatalf("unexpected file content: %q", data)
	}
}

func TestSaveToolHTTPFailureWritesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	tool := NewSaveTool(5 * time.Second)
	input, _ := json.Marshal(map[string]any{"url": server.URL + "/missing", "save_path": dest})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("expected structured failure, got error: %v", err)
	}
	result := payload.(SaveResult)
	if result.Success {
		t.Fatalf("expected failure result")
	}
	if !strings.HasPrefix(result.Error, "HTTP error:") {
		t.Fatalf("unexpected error classification: %q", result.Error)
	}
	if !strings.Contains(result.Message, "Failed to download from") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("file should not have been written")
	}
}

func TestSaveToolUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	tool := NewSaveTool(2 * time.Second)
	input, _ := json.Marshal(map[string]any{"url": target, "save_path": filepath.Join(t.TempDir(), "out")})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("expected structured failure, got error: %v", err)
	}
	result := payload.(SaveResult)
	if result.Success || !strings.HasPrefix(result.Error, "HTTP error:") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSaveToolRequiresURL(t *testing.T) {
	tool := NewSaveTool(time.Second)
	input, _ := json.Marshal(map[string]any{"save_path": "/tmp/x"})
	if _, err := tool.Execute(context.Background(), input); err == nil {
		t.Fatalf("expected contract error for missing url")
	}
}
