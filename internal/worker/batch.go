package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/claimsift/internal/llm"
	"github.com/ppiankov/claimsift/internal/model"
)

// Analyzer runs claim extraction over one batch's joined content
type Analyzer interface {
	Analyze(ctx context.Context, batchContent string) llm.Analysis
}

// AnalysisJob analyses one batch
type AnalysisJob struct {
	Index    int
	Batch    model.Batch
	Analyzer Analyzer
	Limiter  *Limiter
	Endpoint string // rate limit key, usually the model base URL
}

// Execute executes the analysis job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	throttled := false
	if j.Limiter != nil && !j.Limiter.Allow(j.Endpoint) {
		throttled = true
		if err := j.Limiter.Wait(ctx, j.Endpoint); err != nil {
			return &AnalysisResult{
				Index:     j.Index,
				Batch:     j.Batch,
				Analysis:  llm.Analysis{Err: fmt.Errorf("rate limit: %w", err)},
				Throttled: true,
			}
		}
	}

	return &AnalysisResult{
		Index:     j.Index,
		Batch:     j.Batch,
		Analysis:  j.Analyzer.Analyze(ctx, j.Batch.Content()),
		Throttled: throttled,
	}
}

// AnalysisResult is the outcome for one batch
type AnalysisResult struct {
	Index    int
	Batch    model.Batch
	Analysis llm.Analysis

	// Throttled is set when the call had to wait for the endpoint's rate limit
	Throttled bool
}

// GetError returns the error from the analysis
func (r *AnalysisResult) GetError() error {
	return r.Analysis.Err
}

// BatchProcessor analyses batches on a worker pool
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	endpoint    string
}

// NewBatchProcessor creates a new batch processor. requestsPerSecond <= 0
// leaves model calls unthrottled.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
		endpoint:    "model",
	}
}

// WithEndpoint sets the key model calls are rate limited under
func (b *BatchProcessor) WithEndpoint(endpoint string) *BatchProcessor {
	if endpoint != "" {
		b.endpoint = endpoint
	}
	return b
}

// WithEndpointRate gives the model endpoint its own rate, separate from the
// processor default. requestsPerSecond <= 0 keeps the default.
func (b *BatchProcessor) WithEndpointRate(requestsPerSecond float64, burst int) *BatchProcessor {
	if requestsPerSecond > 0 {
		b.limiter.SetHostRate(hostOf(b.endpoint), requestsPerSecond, burst)
	}
	return b
}

// ProcessBatches analyses every batch and returns one result per batch in
// input order. Batches that never ran because ctx was cancelled carry the
// context error.
func (b *BatchProcessor) ProcessBatches(ctx context.Context, batches []model.Batch) []*AnalysisResult {
	if len(batches) == 0 {
		return []*AnalysisResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	submitted := 0
	for i, batch := range batches {
		job := &AnalysisJob{
			Index:    i,
			Batch:    batch,
			Analyzer: b.analyzer,
			Limiter:  b.limiter,
			Endpoint: b.endpoint,
		}
		if !pool.Submit(job) {
			break
		}
		submitted++
	}

	var results []Result
	if submitted < len(batches) {
		results = pool.Shutdown()
	} else {
		results = pool.Wait()
	}

	ordered := make([]*AnalysisResult, len(batches))
	for _, r := range results {
		ar := r.(*AnalysisResult)
		ordered[ar.Index] = ar
	}

	for i := range ordered {
		if ordered[i] != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		ordered[i] = &AnalysisResult{
			Index:    i,
			Batch:    batches[i],
			Analysis: llm.Analysis{Err: fmt.Errorf("%w: %w", llm.ErrInference, err)},
		}
	}

	return ordered
}
