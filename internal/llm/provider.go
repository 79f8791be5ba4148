package llm

import (
	"context"

	"github.com/ppiankov/claimsift/internal/logger"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system + user exchange and returns the full reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single non-streaming chat exchange
type CompletionRequest struct {
	// System is the system message
	System string

	// Prompt is the user message
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling
	Temperature float64
}

// CompletionResponse contains the model's reply
type CompletionResponse struct {
	// Text is the raw reply content
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "llamacpp", "ollama", "openai", "anthropic", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// ContextSize is the context window requested from Ollama
	ContextSize int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string

	// Logger receives availability diagnostics
	Logger logger.Logger
}

func (c Config) logger() logger.Logger {
	if c.Logger == nil {
		return logger.NewNop()
	}
	return c.Logger
}
