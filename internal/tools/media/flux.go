package media

import (
	"bytes"
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

const (
	fluxBaseURL      = "https://api.bfl.ml/v1"
	fluxDefaultModel = "flux.1.1-pro"
	fluxPollInterval = 500 * time.Millisecond
)

// GenerateResult reports where a generated image was saved.
type GenerateResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// FluxTool generates images through the BFL Flux API. Generation is
// asynchronous on the provider side: submit a task, then poll its result
// until it is ready.
type FluxTool struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	timeout time.Duration
}

// NewFluxTool constructs the generate_image_with_flux tool.
func NewFluxTool(apiKey string, timeout time.Duration) *FluxTool {
	return &FluxTool{apiKey: apiKey, baseURL: fluxBaseURL, client: newClient(), timeout: timeout}
}

func (f *FluxTool) Name() string { return "generate_image_with_flux" }

func (f *FluxTool) Description() string {
	return "Generate an image using the Flux API and save it to a local file."
}

func (f *FluxTool) Scopes() []tools.Scope { return []tools.Scope{tools.ScopeGeneration} }

func (f *FluxTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt":     map[string]any{"type": "string", "description": "The text prompt for image generation"},
			"output_dir": map[string]any{"type": "string", "description": "The directory to save the image"},
			"model_name": map[string]any{"type": "string", "description": "The model version to use"},
			"width":      map[string]any{"type": "integer", "description": "Width of the image in pixels"},
			"height":     map[string]any{"type": "integer", "description": "Height of the image in pixels"},
			"seed":       map[string]any{"type": "integer", "description": "Seed for reproducibility"},
		},
		"required":             []string{"prompt", "output_dir"},
		"additionalProperties": false,
	}
}

type fluxInput struct {
	Prompt    string `json:"prompt"`
	OutputDir string `json:"output_dir"`
	ModelName string `json:"model_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Seed      *int   `json:"seed"`
}

func (f *FluxTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	if f.apiKey == "" {
		return nil, errors.New("bfl api key is missing")
	}
	var args fluxInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	if strings.TrimSpace(args.OutputDir) == "" {
		return nil, errors.New("output_dir is required")
	}
	if args.ModelName == "" {
		args.ModelName = fluxDefaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	taskID, err := f.submit(ctx, args)
	if err != nil {
		return generateFailure(err), nil
	}
	sampleURL, err := f.awaitResult(ctx, taskID)
	if err != nil {
		return generateFailure(err), nil
	}

	if err := os.MkdirAll(args.OutputDir, 0o755); err != nil {
		return generateFailure(err), nil
	}
	path := filepath.Join(args.OutputDir, taskID+".png")
	if err := f.download(ctx, sampleURL, path); err != nil {
		return generateFailure(err), nil
	}

	return GenerateResult{
		Success: true,
		Path:    path,
		Message: fmt.Sprintf("Image successfully saved to %s", path),
	}, nil
}

func (f *FluxTool) submit(ctx context.Context, args fluxInput) (string, error) {
	payload := map[string]any{"prompt": args.Prompt}
	if args.Width > 0 {
		payload["width"] = args.Width
	}
	if args.Height > 0 {
		payload["height"] = args.Height
	}
	if args.Seed != nil {
		payload["seed"] = *args.Seed
	}
	body, _ := json.Marshal(payload)

	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/"+args.ModelName, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("x-key", f.apiKey)
	request.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(request)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("flux submit failed: %s", strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.ID == "" {
		return "", errors.New("no task id in flux response")
	}
	return decoded.ID, nil
}

// awaitResult polls the task until the provider reports it ready. Each
// poll is a fresh state read, not a retry of a failed call.
func (f *FluxTool) awaitResult(ctx context.Context, taskID string) (string, error) {
	ticker := time.NewTicker(fluxPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/get_result?id="+taskID, nil)
		if err != nil {
			return "", err
		}
		request.Header.Set("x-key", f.apiKey)
		resp, err := f.client.Do(request)
		if err != nil {
			return "", err
		}
		var decoded struct {
			Status string `json:"status"`
			Result struct {
				Sample string `json:"sample"`
			} `json:"result"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if decodeErr != nil {
			return "", decodeErr
		}

		switch decoded.Status {
		case "Ready":
			if decoded.Result.Sample == "" {
				return "", errors.New("flux result has no sample url")
			}
			return decoded.Result.Sample, nil
		case "Pending", "Processing", "Queued":
			continue
		default:
			return "", fmt.Errorf("flux generation failed with status %q", decoded.Status)
		}
	}
}

func (f *FluxTool) download(ctx context.Context, sampleURL, path string) error {
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, sampleURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sample download failed: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func generateFailure(err error) GenerateResult {
	return GenerateResult{
		Success: false,
		Error:   err.Error(),
		Message: "Failed to generate image",
	}
}
