package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/claimsift/internal/cache"
	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
	"github.com/ppiankov/claimsift/internal/validate"
)

var (
	// ErrRuntimeUnavailable means no model runtime is configured or reachable
	ErrRuntimeUnavailable = errors.New("model runtime unavailable")
	// ErrProviderInit means the configured provider could not be constructed
	ErrProviderInit = errors.New("model provider construction failed")
	// ErrInference means the model call itself failed
	ErrInference = errors.New("model inference failed")
)

// Outcome labels, also used as metric label values
const (
	OutcomeOK           = "ok"
	OutcomeCached       = "cached"
	OutcomeUnavailable  = "unavailable"
	OutcomeProviderInit = "provider_init"
	OutcomeInference    = "inference_error"
	OutcomeNotJSON      = "not_json"
)

// Analysis is the explicit result of analysing one batch
type Analysis struct {
	Claims     []model.Claim
	Model      string
	TokensUsed int
	Cached     bool
	Duration   time.Duration
	Dropped    int // claims removed by validation
	Err        error
}

// OK reports whether the model produced a parseable reply
func (a Analysis) OK() bool {
	return a.Err == nil
}

// Outcome classifies the analysis for logging and metrics
func (a Analysis) Outcome() string {
	switch {
	case a.Err == nil && a.Cached:
		return OutcomeCached
	case a.Err == nil:
		return OutcomeOK
	case errors.Is(a.Err, ErrProviderInit):
		return OutcomeProviderInit
	case errors.Is(a.Err, ErrRuntimeUnavailable):
		return OutcomeUnavailable
	case errors.Is(a.Err, ErrNotJSONArray):
		return OutcomeNotJSON
	default:
		return OutcomeInference
	}
}

// AnalyzerOptions tunes the model call
type AnalyzerOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Cache       cache.Cache
	CacheTTL    time.Duration
	Validator   *validate.Validator
	Logger      logger.Logger
}

// Analyzer sends batches to a provider and turns replies into claims
type Analyzer struct {
	provider    Provider
	providerErr error
	opts        AnalyzerOptions
	log         logger.Logger

	availOnce sync.Once
	available bool
}

// NewAnalyzer creates an analyzer around provider. A nil provider means
// analysis is disabled and every batch fails as runtime unavailable.
func NewAnalyzer(provider Provider, opts AnalyzerOptions) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Validator == nil {
		opts.Validator = validate.NewValidator(opts.Logger)
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = model.DefaultMaxTokens
	}
	return &Analyzer{
		provider: provider,
		opts:     opts,
		log:      opts.Logger,
	}
}

// NewAnalyzerFromConfig constructs the configured provider. A construction
// failure is kept and reported on every Analyze call instead of aborting.
func NewAnalyzerFromConfig(config Config, opts AnalyzerOptions) *Analyzer {
	if opts.Model == "" {
		opts.Model = config.Model
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = config.MaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = config.Temperature
	}
	if config.Logger == nil {
		config.Logger = opts.Logger
	}

	provider, err := NewProvider(config)
	a := NewAnalyzer(provider, opts)
	if err != nil {
		a.providerErr = err
		a.log.Error("Failed to construct model provider",
			logger.String("provider", config.Provider),
			logger.Error(err),
		)
	}
	return a
}

// Enabled reports whether a provider is configured
func (a *Analyzer) Enabled() bool {
	return a.provider != nil
}

// ProviderName returns the name of the configured provider, or "" if disabled
func (a *Analyzer) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

// Analyze runs the claim extraction prompt over batchContent. It makes at
// most one model call and never retries.
func (a *Analyzer) Analyze(ctx context.Context, batchContent string) Analysis {
	start := time.Now()
	result := a.analyze(ctx, batchContent)
	result.Duration = time.Since(start)
	return result
}

func (a *Analyzer) analyze(ctx context.Context, batchContent string) Analysis {
	if a.providerErr != nil {
		return Analysis{Err: fmt.Errorf("%w: %v", ErrProviderInit, a.providerErr)}
	}
	if a.provider == nil {
		return Analysis{Err: fmt.Errorf("%w: no provider configured", ErrRuntimeUnavailable)}
	}

	prompt := BuildPrompt(batchContent)
	key := cache.ResponseKey(a.provider.Name(), a.opts.Model, prompt)

	if raw, ok := a.opts.Cache.Get(key); ok {
		claims, err := ParseClaims(string(raw))
		if err == nil {
			result := a.finish(claims)
			result.Cached = true
			result.Model = a.opts.Model
			return result
		}
		// A stale entry that no longer parses is evicted and re-requested
		_ = a.opts.Cache.Delete(key)
	}

	if !a.isAvailable(ctx) {
		return Analysis{Err: fmt.Errorf("%w: %s", ErrRuntimeUnavailable, a.provider.Name())}
	}

	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:      SystemPrompt,
		Prompt:      prompt,
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return Analysis{Err: fmt.Errorf("%w: %w", ErrInference, err)}
	}

	claims, err := ParseClaims(resp.Text)
	if err != nil {
		a.log.Debug("Unparseable model output", logger.String("output", truncate(resp.Text, 500)))
		return Analysis{Model: resp.Model, TokensUsed: resp.TokensUsed, Err: err}
	}

	if err := a.opts.Cache.Set(key, []byte(resp.Text), a.opts.CacheTTL); err != nil {
		a.log.Warn("Failed to cache model response", logger.Error(err))
	}

	result := a.finish(claims)
	result.Model = resp.Model
	result.TokensUsed = resp.TokensUsed
	return result
}

func (a *Analyzer) finish(claims []model.Claim) Analysis {
	kept, stats := a.opts.Validator.Validate(claims)
	return Analysis{Claims: kept, Dropped: stats.DroppedEmpty}
}

// isAvailable checks the provider once per analyzer
func (a *Analyzer) isAvailable(ctx context.Context) bool {
	a.availOnce.Do(func() {
		a.available = a.provider.IsAvailable(ctx)
	})
	return a.available
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
