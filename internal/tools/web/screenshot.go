package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/ai-zerolab/lightblue/internal/tools"
)

const urlboxRenderURL = "https://api.urlbox.io/v1/render/sync"

// ScreenshotResult carries the captured image. Data marshals to base64 in
// JSON payloads.
type ScreenshotResult struct {
	Success   bool   `json:"success"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// ScreenshotTool captures a full-page screenshot via the Urlbox API.
type ScreenshotTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewScreenshotTool constructs the screenshot tool.
func NewScreenshotTool(apiKey string, timeout time.Duration) *ScreenshotTool {
	return &ScreenshotTool{apiKey: apiKey, baseURL: urlboxRenderURL, client: newClient(), timeout: timeout}
}

func (s *ScreenshotTool) Name() string { return "screenshot" }

func (s *ScreenshotTool) Description() string {
	return "Take screenshot of a web page. For images, you should use the `save_http_file` tool to download the image then use `read_file` to view it."
}

func (s *ScreenshotTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeWeb} }

func (s *ScreenshotTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL of the web page to take a screenshot of"},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}

type screenshotInput struct {
	URL string `json:"url"`
}

func (s *ScreenshotTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if s.apiKey == "" {
		return nil, errors.New("urlbox api key is missing")
	}
	var args screenshotInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.URL) == "" {
		return nil, errors.New("url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.render(ctx, args.URL)
	if err != nil {
		return tools.Errorf("HTTP error: %s", err), nil
	}
	return ScreenshotResult{Success: true, MediaType: "image/png", Data: data}, nil
}

// render requests a synchronous render and downloads the resulting image.
func (s *ScreenshotTool) render(ctx context.Context, pageURL string) ([]byte, error) {
	payload := map[string]any{
		"url":                 pageURL,
		"width":               1600,
		"height":              900,
		"thumb_width":         800,
		"format":              "png",
		"hide_cookie_banners": true,
		"block_ads":           true,
		"wait_until":          "loaded",
		"full_page":           true,
		"full_width":          true,
	}
	body, _ := json.Marshal(payload)

	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+s.apiKey)
	request.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("urlbox render failed: %s", strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		RenderURL string `json:"renderUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.RenderURL == "" {
		return nil, errors.New("no renderUrl in response")
	}

	imageReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, decoded.RenderURL, nil)
	if err != nil {
		return nil, err
	}
	imageResp, err := s.client.Do(imageReq)
	if err != nil {
		return nil, err
	}
	defer imageResp.Body.Close()
	if imageResp.StatusCode < 200 || imageResp.StatusCode >= 300 {
		return nil, fmt.Errorf("screenshot download failed: %s", imageResp.Status)
	}
	return io.ReadAll(imageResp.Body)
}
