package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. bge-m3, llama3.2:1b
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaProvider implements port.AIProvider using the Ollama REST API.
// Supports separate endpoints for embed vs generate (different URLs, models,
// and tokens). The embed endpoint must stay identical between index builds
// and query-time embedding or retrieval quality silently degrades.
type OllamaProvider struct {
	embed      OllamaEndpointConfig
	generate   OllamaEndpointConfig
	httpClient *http.Client
}

// NewOllamaProvider creates a new Ollama-backed AI provider with separate
// embed/generate configs.
func NewOllamaProvider(embed, generate OllamaEndpointConfig) *OllamaProvider {
	return &OllamaProvider{
		embed:      embed,
		generate:   generate,
		httpClient: &http.Client{},
	}
}

// ModelName returns the generation model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.generate.Model
}

// EmbedModelName returns the embedding model identifier.
func (o *OllamaProvider) EmbedModelName() string {
	return o.embed.Model
}

// Embed generates a vector embedding for the given text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": o.embed.Model,
		"input": text,
	}

	body, err := o.post(ctx, o.embed, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}

	return resp.Embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]interface{}{
		"model": o.embed.Model,
		"input": texts,
	}

	body, err := o.post(ctx, o.embed, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("ollama embed batch: %w", err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed batch decode: %w", err)
	}

	return resp.Embeddings, nil
}

// Generate produces a completion via /api/generate. Timeouts and transport
// failures are surfaced as distinct sentinel errors so the caller can decide
// between wait-and-retry and fail-fast; no retry happens here.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts port.GenerateOptions) (string, error) {
	payload := map[string]interface{}{
		"model":      o.generate.Model,
		"prompt":     prompt,
		"stream":     false,
		"keep_alive": "10m",
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
			"num_ctx":     opts.NumCtx,
			"top_k":       opts.TopK,
			"top_p":       opts.TopP,
		},
	}

	body, err := o.post(ctx, o.generate, "/api/generate", payload)
	if err != nil {
		return "", classifyGenerateErr(err)
	}

	var resp struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama generate decode: %w", err)
	}

	return strings.TrimSpace(resp.Response), nil
}

// classifyGenerateErr maps low-level HTTP client failures onto the generation
// error taxonomy. Deadline expiry and net timeouts become ErrGenerationTimeout,
// everything else reachable over the wire becomes ErrGenerationTransport.
func classifyGenerateErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", port.ErrGenerationTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", port.ErrGenerationTimeout, err)
	}
	return fmt.Errorf("%w: %v", port.ErrGenerationTransport, err)
}

// post is a helper for POST requests to an Ollama endpoint (with optional bearer token).
func (o *OllamaProvider) post(ctx context.Context, cfg OllamaEndpointConfig, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
