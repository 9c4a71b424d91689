package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

// SaveResult is the structured result for download/save-type tools.
type SaveResult struct {
	Success     bool   `json:"success"`
	Path        string `json:"path,omitempty"`
	Size        int    `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message"`
}

// SaveTool downloads a web resource and writes it to a local path.
type SaveTool struct {
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewSaveTool constructs the save_http_file tool.
func NewSaveTool(timeout time.Duration) *SaveTool {
	return &SaveTool{client: newClient(), timeout: timeout}
}

func (s *SaveTool) Name() string { return "save_http_file" }

func (s *SaveTool) Description() string {
	return "Downloads files from the web (HTML, images, documents, etc.) and saves them to the specified path. Supports various file types including HTML, PNG, JPEG, PDF, and more."
}

func (s *SaveTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWeb} }

func (s *SaveTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":       map[string]any{"type": "string", "description": "URL of the web resource to download"},
			"save_path": map[string]any{"type": "string", "description": "Path where the file should be saved"},
		},
		"required":             []string{"url", "save_path"},
		"additionalProperties": false,
	}
}

type saveInput struct {
	URL      string `json:"url"`
	SavePath string `json:"save_path"`
}

func (s *SaveTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args saveInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.URL) == "" {
		return nil, errors.New("url is required")
	}
	if strings.TrimSpace(args.SavePath) == "" {
		return nil, errors.New("save_path is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return downloadFailure(args.URL, err), nil
	}
	resp, err := s.client.Do(request)
	if err != nil {
		return downloadFailure(args.URL, err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return downloadFailure(args.URL, fmt.Errorf("unexpected status %s", resp.Status)), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return downloadFailure(args.URL, err), nil
	}

	if err := os.MkdirAll(filepath.Dir(args.SavePath), 0o755); err != nil {
		return saveFailure(args.SavePath, err), nil
	}
	if err := os.WriteFile(args.SavePath, body, 0o644); err != nil {
		return saveFailure(args.SavePath, err), nil
	}

	return SaveResult{
		Success:     true,
		Path:        args.SavePath,
		Size:        len(body),
		ContentType: resp.Header.Get("Content-Type"),
		Message:     fmt.Sprintf("File successfully saved to %s", args.SavePath),
	}, nil
}

func downloadFailure(url string, err error) SaveResult {
	return SaveResult{
		Success: false,
		Error:   fmt.Sprintf("HTTP error: %s", err),
		Message: fmt.Sprintf("Failed to download from %s", url),
	}
}

func saveFailure(path string, err error) SaveResult {
	return SaveResult{
		Success: false,
		Error:   err.Error(),
		Message: fmt.Sprintf("Failed to save file to %s", path),
	}
}
