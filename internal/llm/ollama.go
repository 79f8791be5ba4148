package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/util"
)

// DefaultOllamaURL is where a local Ollama server listens
const DefaultOllamaURL = "http://localhost:11434"

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	client  *api.Client
	baseURL string
	config  Config
	log     logger.Logger
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // Ollama can be slower for local models
	}

	httpClient := util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, timeout)

	return &OllamaProvider{
		client:  api.NewClient(parsed, httpClient),
		baseURL: baseURL,
		config:  config,
		log:     config.logger(),
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that Ollama is running and can list its models
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.List(ctx); err != nil {
		p.log.Warn("Ollama availability check failed",
			logger.String("base_url", p.baseURL),
			logger.Error(err),
		)
		return false
	}
	return true
}

// Complete runs one non-streaming /api/chat exchange
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., phi4, llama3.1:8b)")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}
	if p.config.ContextSize > 0 {
		options["num_ctx"] = p.config.ContextSize
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Stream:  &stream,
		Options: options,
	}

	var content strings.Builder
	var final api.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			final = resp
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	text := content.String()

	// Some models report no counts; fall back to roughly four characters per token
	tokensUsed := final.PromptEvalCount + final.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(req.System) + len(req.Prompt) + len(text)) / 4
	}

	respModel := final.Model
	if respModel == "" {
		respModel = model
	}

	return &CompletionResponse{
		Text:       text,
		Model:      respModel,
		TokensUsed: tokensUsed,
	}, nil
}
