package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

func TestTavilyToolReturnsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tv-key" {
			t.Errorf("missing auth header")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "golang" || body["search_depth"] != "basic" {
			t.Errorf("unexpected request body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Go", "url": "https://go.dev", "content": "The Go programming language", "score": 0.9},
			},
		})
	}))
	defer server.Close()

	tool := NewTavilyTool("tv-key", 5*time.Second)
	tool.baseURL = server.URL
	input, _ := json.Marshal(map[string]any{"query": "golang"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, ok := payload.([]TavilyResult)
	if !ok || len(results) != 1 {
		t.Fatalf("unexpected payload: %T %v", payload, payload)
	}
	if results[0].URL != "https://go.dev" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestTavilyToolEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	tool := NewTavilyTool("tv-key", 5*time.Second)
	tool.baseURL = server.URL
	input, _ := json.Marshal(map[string]any{"query": "nothing"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failure, ok := payload.(tools.ErrorResult)
	if !ok || failure.Success || failure.Error != "No search results found." {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestJinaReaderReturnsMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.String(), "example.com") {
			t.Errorf("target url not forwarded: %s", r.URL)
		}
		_, _ = w.Write([]byte("# Example\n\nContent."))
	}))
	defer server.Close()

	tool := NewJinaReaderTool("jina-key", 5*time.Second)
	tool.baseURL = server.URL + "/"
	input, _ := json.Marshal(map[string]any{"url": "https://example.com"})
	payload, err := tool.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, ok := payload.(string); !ok || !strings.HasPrefix(text, "# Example") {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestJinaSearchRequiresQuery(t *testing.T) {
	tool := NewJinaSearchTool("jina-key", time.Second)
	input, _ := json.Marshal(map[string]any{})
	if _, err := tool.Execute(context.Background(), input); err == nil {
		t.Fatalf("expected contract error for missing query")
	}
}
