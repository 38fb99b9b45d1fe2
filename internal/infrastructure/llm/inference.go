package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/ports"
)

// InferenceClient talks to a self-hosted JSON inference service exposing
// POST /generate.
type InferenceClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.Generator = (*InferenceClient)(nil)

// NewInferenceClient creates a reusable HTTP client.
func NewInferenceClient(cfg config.ProviderConfig, timeout time.Duration) *InferenceClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InferenceClient{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
	}
}

// Complete sends the prompt pair and returns the generated text.
func (c *InferenceClient) Complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("inference endpoint is not configured")
	}

	payload := map[string]any{
		"system":     prompt.System,
		"prompt":     prompt.User,
		"max_tokens": prompt.MaxTokens,
	}
	if c.model != "" {
		payload["model"] = c.model
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/generate", payload, &resp); err != nil {
		return "", err
	}

	return resp.Text, nil
}

func (c *InferenceClient) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
