package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/util"
)

// DefaultLlamaCppURL is the OpenAI-compatible endpoint of a local llama.cpp server
const DefaultLlamaCppURL = "http://localhost:8080/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint:
// the OpenAI API itself or a local llama.cpp server.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
	log    logger.Logger
}

// NewOpenAIProvider creates a provider for the OpenAI API
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newOpenAICompatible("openai", config), nil
}

// NewLlamaCppProvider creates a provider for a llama.cpp server. The server
// ignores the API key unless it was started with --api-key.
func NewLlamaCppProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultLlamaCppURL
	}
	if config.APIKey == "" {
		config.APIKey = "no-key"
	}
	return newOpenAICompatible("llamacpp", config), nil
}

func newOpenAICompatible(name string, config Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	clientConfig.HTTPClient = util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, timeout)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
		log:    config.logger(),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks that the endpoint answers a model listing
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		p.log.Warn("Model endpoint check failed",
			logger.String("provider", p.name),
			logger.String("base_url", p.config.BaseURL),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Complete runs one non-streaming chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
		Stream:      false,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%s API error (%d): %w", p.name, apiErr.HTTPStatusCode, err)
		}
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}

	return &CompletionResponse{
		Text:       resp.Choices[0].Message.Content,
		Model:      respModel,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
