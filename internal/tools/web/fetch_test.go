package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchToolConvertsHTMLToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>"))
	}))
	defer server.Close()

	tool := NewFetchTool(5*time.Second, 0)
	input, _ := json.Marshal(map[string]any{"url": server.URL})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := payload.(FetchResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if !strings.Contains(result.Markdown, "# Title") || !strings.Contains(result.Markdown, "**bold**") {
		t.Fatalf("unexpected markdown: %q", result.Markdown)
	}
}

func TestFetchToolTruncatesLargeBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer server.Close()

	tool := NewFetchTool(5*time.Second, 100)
	input, _ := json.Marshal(map[string]any{"url": server.URL})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := payload.(FetchResult)
	if !result.Truncated || len(result.Markdown) > 100 {
		t.Fatalf("expected truncated output, got %d bytes", len(result.Markdown))
	}
}
