package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/util"
)

// FetchResult is the payload returned by fetch_web.
type FetchResult struct {
	URL       string `json:"url"`
	Markdown  string `json:"markdown"`
	Truncated bool   `json:"truncated"`
}

// FetchTool fetches a page directly and converts HTML to markdown locally,
// with no API key required.
type FetchTool struct {
	client   *retryablehttp.Client
	timeout  time.Duration
	maxBytes int
}

// NewFetchTool constructs the fetch_web tool.
func NewFetchTool(timeout time.Duration, maxBytes int) *FetchTool {
	return &FetchTool{client: newClient(), timeout: timeout, maxBytes: maxBytes}
}

func (f *FetchTool) Name() string { return "fetch_web" }

func (f *FetchTool) Description() string {
	return "Fetches a web page and returns its content converted to Markdown. Works without any API key; prefer read_web_with_jina for heavy pages when a Jina key is configured."
}

func (f *FetchTool) Scopes() []tools.Scope {
	return []tools.Scope{tools.ScopeRead, tools.ScopeWeb}
}

func (f *FetchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL of the web page to fetch"},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

type fetchInput struct {
	URL string `json:"url"`
}

func (f *FetchTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	var args fetchInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.URL) == "" {
		return nil, errors.New("url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	resp, err := f.client.Do(request)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tools.Errorf("HTTP error: unexpected status %s", resp.Status), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || looksLikeHTML(content) {
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(content)
		if err != nil {
			return tools.Errorf("markdown conversion failed: %s", err), nil
		}
		content = markdown
	}

	trimmed, truncated := util.TruncateBytes(content, f.maxBytes)
	return FetchResult{URL: args.URL, Markdown: trimmed, Truncated: truncated}, nil
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}
