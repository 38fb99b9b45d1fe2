// Package llm holds the text-generation backends.
package llm

import (
	"fmt"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/ports"
)

// New picks the backend named by cfg.Provider.
func New(cfg config.LLMConfig) (ports.Generator, error) {
	active := cfg.Active()
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewChatGPTClient(active, cfg.Timeout), nil
	case config.ProviderAnthropic:
		client, err := NewAnthropicClient(active, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderInference:
		return NewInferenceClient(active, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
