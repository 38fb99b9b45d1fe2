package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/ports"
)

const anthropicDefaultMaxTokens = 1024

// AnthropicClient implements ports.Generator on the Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

var _ ports.Generator = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client; an empty Endpoint keeps the SDK default.
func NewAnthropicClient(cfg config.ProviderConfig, timeout time.Duration, opts ...option.RequestOption) (*AnthropicClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("anthropic client misconfigured")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.Endpoint))
	}
	if timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(timeout))
	}
	reqOpts = append(reqOpts, opts...)

	return &AnthropicClient{
		client: anthropic.NewClient(reqOpts...),
		model:  cfg.Model,
	}, nil
}

// Complete joins the text blocks of the assistant reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	}
	if system := strings.TrimSpace(prompt.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text (stop reason %s)", msg.StopReason)
	}
	return b.String(), nil
}
