// Package media contains the image search and image generation tools.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

const pixabayBaseURL = "https://pixabay.com/api/"

// ImageResult is one image search record.
type ImageResult struct {
	ID         int    `json:"id"`
	PageURL    string `json:"page_url"`
	Tags       string `json:"tags"`
	PreviewURL string `json:"preview_url"`
	ImageURL   string `json:"image_url"`
}

// PixabayTool searches stock images via the Pixabay API.
type PixabayTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewPixabayTool constructs the search_image tool.
func NewPixabayTool(apiKey string, timeout time.Duration) *PixabayTool {
	return &PixabayTool{apiKey: apiKey, baseURL: pixabayBaseURL, client: newClient(), timeout: timeout}
}

func (p *PixabayTool) Name() string { return "search_image" }

func (p *PixabayTool) Description() string {
	return `Search images from internet via Pixabay. Use this tool if you need to find images from the internet.

query: A Search term. If omitted, all images are returned. This value may not exceed 100 characters. Example: "yellow+flower"
`
}

func (p *PixabayTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWeb} }

func (p *PixabayTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The search query"},
		},
		"required":             []string{"query"},
		"additionalProperties": false,
	}
}

type pixabayInput struct {
	Query string `json:"query"`
}

func (p *PixabayTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if p.apiKey == "" {
		return nil, errors.New("pixabay api key is missing")
	}
	var args pixabayInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if len(args.Query) > 100 {
		return nil, errors.New("query may not exceed 100 characters")
	}

	target, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, err
	}
	params := target.Query()
	params.Set("key", p.apiKey)
	params.Set("q", args.Query)
	params.Set("image_type", "photo")
	target.RawQuery = params.Encode()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(request)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return tools.Errorf("pixabay search failed: %s", strings.TrimSpace(string(raw))), nil
	}

	var decoded struct {
		Hits []struct {
			ID            int    `json:"id"`
			PageURL       string `json:"pageURL"`
			Tags          string `json:"tags"`
			PreviewURL    string `json:"previewURL"`
			LargeImageURL string `json:"largeImageURL"`
			WebformatURL  string `json:"webformatURL"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return tools.Errorf("invalid pixabay response: %s", err), nil
	}
	if len(decoded.Hits) == 0 {
		return tools.Errorf("No search results found."), nil
	}

	results := make([]ImageResult, 0, len(decoded.Hits))
	for _, hit := range decoded.Hits {
		imageURL := hit.LargeImageURL
		if imageURL == "" {
			imageURL = hit.WebformatURL
		}
		results = append(results, ImageResult{
			ID:         hit.ID,
			PageURL:    hit.PageURL,
			Tags:       hit.Tags,
			PreviewURL: hit.PreviewURL,
			ImageURL:   imageURL,
		})
	}
	return results, nil
}

func newClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	return client
}
