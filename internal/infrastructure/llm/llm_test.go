package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/ports"
)

func TestChatGPTClientComplete(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Idea Name: Ledgerly"}}]}`))
	}))
	defer srv.Close()

	c := NewChatGPTClient(config.ProviderConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "sk-test"}, 0)
	out, err := c.Complete(context.Background(), ports.Prompt{System: "sys", User: "posts", MaxTokens: 99})
	require.NoError(t, err)

	assert.Equal(t, "Idea Name: Ledgerly", out)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 99, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "posts", got.Messages[1].Content)
}

func TestChatGPTClientErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "empty") {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewChatGPTClient(config.ProviderConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"}, 0).
		Complete(context.Background(), ports.Prompt{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")

	_, err = NewChatGPTClient(config.ProviderConfig{Endpoint: srv.URL + "/empty", Model: "m", APIKey: "k"}, 0).
		Complete(context.Background(), ports.Prompt{User: "x"})
	assert.ErrorContains(t, err, "no choices")

	_, err = NewChatGPTClient(config.ProviderConfig{Endpoint: srv.URL}, 0).Complete(context.Background(), ports.Prompt{})
	assert.ErrorContains(t, err, "misconfigured")
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "=== POST 1 ===\n"}, {"type": "text", "text": "Idea Name: Ledgerly"}],
			"stop_reason": "end_turn", "usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(config.ProviderConfig{Endpoint: srv.URL, Model: "claude-test", APIKey: "sk-ant"}, 0,
		option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), ports.Prompt{System: "be terse", User: "posts", MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "=== POST 1 ===\nIdea Name: Ledgerly", out)
	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, 64, body["max_tokens"])
	assert.NotNil(t, body["system"])
}

func TestAnthropicClientRequiresKeyAndModel(t *testing.T) {
	t.Parallel()

	_, err := NewAnthropicClient(config.ProviderConfig{Model: "claude"}, 0)
	assert.Error(t, err)
}

func TestAnthropicClientServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	c, err := NewAnthropicClient(config.ProviderConfig{Endpoint: srv.URL, Model: "nope", APIKey: "k"}, 0,
		option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), ports.Prompt{User: "x"})
	assert.ErrorContains(t, err, "anthropic messages")
}

func TestInferenceClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "posts", payload["prompt"])
		assert.Equal(t, "local-7b", payload["model"])
		_, _ = w.Write([]byte(`{"text":"YES"}`))
	}))
	defer srv.Close()

	c := NewInferenceClient(config.ProviderConfig{Endpoint: srv.URL + "/", Model: "local-7b"}, 0)
	out, err := c.Complete(context.Background(), ports.Prompt{User: "posts", MaxTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, "YES", out)
}

func TestInferenceClientStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewInferenceClient(config.ProviderConfig{Endpoint: srv.URL}, 0).Complete(context.Background(), ports.Prompt{})
	assert.ErrorContains(t, err, "502")

	_, err = NewInferenceClient(config.ProviderConfig{}, 0).Complete(context.Background(), ports.Prompt{})
	assert.ErrorContains(t, err, "not configured")
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	gen, err := New(config.LLMConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &ChatGPTClient{}, gen)

	gen, err = New(config.LLMConfig{Provider: config.ProviderInference})
	require.NoError(t, err)
	assert.IsType(t, &InferenceClient{}, gen)

	gen, err = New(config.LLMConfig{
		Provider:  config.ProviderAnthropic,
		Anthropic: config.ProviderConfig{Model: "claude", APIKey: "k"},
	})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, gen)

	_, err = New(config.LLMConfig{Provider: "mystery"})
	assert.Error(t, err)
}
