package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

const (
	tavilyBaseURL     = "https://api.tavily.com/search"
	jinaSearchBaseURL = "https://s.jina.ai/"
	jinaReaderBaseURL = "https://r.jina.ai/"
)

const searchDescription = `Performs web searches using %s.
If the initial query is too broad or results are not ideal, the LLM can refine the search by progressively reducing keywords to improve accuracy.
Useful for retrieving up-to-date information, specific data, or detailed background research.
`

// TavilyTool wraps the Tavily search API.
type TavilyTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewTavilyTool constructs the search_with_tavily tool.
func NewTavilyTool(apiKey string, timeout time.Duration) *TavilyTool {
	return &TavilyTool{apiKey: apiKey, baseURL: tavilyBaseURL, client: newClient(), timeout: timeout}
}

func (t *TavilyTool) Name() string { return "search_with_tavily" }

func (t *TavilyTool) Description() string {
	return fmt.Sprintf(searchDescription, "Tavily")
}

func (t *TavilyTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWeb} }

func (t *TavilyTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string", "description": "The search query"},
			"search_deep": map[string]any{"type": "string", "enum": []string{"basic", "advanced"}, "description": "The search depth"},
			"topic":       map[string]any{"type": "string", "enum": []string{"general", "news"}, "description": "The topic"},
			"time_range":  map[string]any{"type": "string", "enum": []string{"day", "week", "month", "year", "d", "w", "m", "y"}, "description": "The time range"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

type tavilyInput struct {
	Query      string `json:"query"`
	SearchDeep string `json:"search_deep"`
	Topic      string `json:"topic"`
	TimeRange  string `json:"time_range"`
}

// TavilyResult is one search result record.
type TavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

func (t *TavilyTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if t.apiKey == "" {
		return nil, errors.New("tavily api key is missing")
	}
	var args tavilyInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, errors.New("query is required")
	}
	if args.SearchDeep == "" {
		args.SearchDeep = "basic"
	}
	if args.Topic == "" {
		args.Topic = "general"
	}

	payload := map[string]any{
		"query":        args.Query,
		"search_depth": args.SearchDeep,
		"topic":        args.Topic,
	}
	if args.TimeRange != "" {
		payload["time_range"] = args.TimeRange
	}
	body, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+t.apiKey)
	request.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(request)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return tools.Errorf("tavily search failed: %s", strings.TrimSpace(string(raw))), nil
	}

	var decoded struct {
		Results []TavilyResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return tools.Errorf("invalid tavily response: %s", err), nil
	}
	if len(decoded.Results) == 0 {
		return tools.Errorf("No search results found."), nil
	}
	return decoded.Results, nil
}

// JinaSearchTool wraps the Jina search API.
type JinaSearchTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewJinaSearchTool constructs the search_with_jina tool.
func NewJinaSearchTool(apiKey string, timeout time.Duration) *JinaSearchTool {
	return &JinaSearchTool{apiKey: apiKey, baseURL: jinaSearchBaseURL, client: newClient(), timeout: timeout}
}

func (j *JinaSearchTool) Name() string { return "search_with_jina" }

func (j *JinaSearchTool) Description() string {
	return fmt.Sprintf(searchDescription, "Jina")
}

func (j *JinaSearchTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWeb} }

func (j *JinaSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The search query"},
			"page":  map[string]any{"type": "integer", "description": "The page number", "minimum": 1},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

type jinaSearchInput struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

func (j *JinaSearchTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if j.apiKey == "" {
		return nil, errors.New("jina api key is missing")
	}
	var args jinaSearchInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, errors.New("query is required")
	}
	if args.Page <= 0 {
		args.Page = 1
	}

	target, err := url.Parse(j.baseURL)
	if err != nil {
		return nil, err
	}
	params := target.Query()
	params.Set("q", args.Query)
	params.Set("page", fmt.Sprintf("%d", args.Page))
	target.RawQuery = params.Encode()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+j.apiKey)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Engine", "direct")

	resp, err := j.client.Do(request)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return tools.Errorf("jina search failed: %s", strings.TrimSpace(string(raw))), nil
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return tools.Errorf("invalid jina response: %s", err), nil
	}
	return decoded, nil
}

// JinaReaderTool reads a web page through the Jina reader proxy and
// returns markdown.
type JinaReaderTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewJinaReaderTool constructs the read_web_with_jina tool.
func NewJinaReaderTool(apiKey string, timeout time.Duration) *JinaReaderTool {
	return &JinaReaderTool{apiKey: apiKey, baseURL: jinaReaderBaseURL, client: newClient(), timeout: timeout}
}

func (j *JinaReaderTool) Name() string { return "read_web_with_jina" }

func (j *JinaReaderTool) Description() string {
	return "Reads web pages using Jina. Results are in Markdown format. Use this tool to focus on the content of the page."
}

func (j *JinaReaderTool) Scopes() []tools.Scope {
	return []tools.Scope{tools.ScopeRead, tools.ScopeWeb}
}

func (j *JinaReaderTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL of the web page to read"},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

type jinaReaderInput struct {
	URL string `json:"url"`
}

func (j *JinaReaderTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if j.apiKey == "" {
		return nil, errors.New("jina api key is missing")
	}
	var args jinaReaderInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.URL) == "" {
		return nil, errors.New("url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+args.URL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.client.Do(request)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return tools.Errorf("jina reader failed: %s", strings.TrimSpace(string(raw))), nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	return string(body), nil
}
