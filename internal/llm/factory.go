package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimsift/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables analysis and returns a nil Provider.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	var (
		p   Provider
		err error
	)

	switch provider {
	case "llamacpp", "llama.cpp", "llama-cpp":
		p, err = NewLlamaCppProvider(config)

	case "openai":
		p, err = NewOpenAIProvider(config)

	case "anthropic", "claude":
		p, err = NewAnthropicProvider(config)

	case "ollama":
		p, err = NewOllamaProvider(config)

	case "", "none":
		// No provider configured - LLM disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: llamacpp, ollama, openai, anthropic)", config.Provider)
	}

	// Keep a failed constructor's typed nil out of the interface
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, input model.InputConfig) Config {
	return Config{
		Provider:    llmConfig.Provider,
		Model:       llmConfig.Model,
		APIKey:      llmConfig.APIKey,
		BaseURL:     llmConfig.BaseURL,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		ContextSize: llmConfig.ContextSize,
		HTTPProxy:   input.HTTPProxy,
		HTTPSProxy:  input.HTTPSProxy,
	}
}
