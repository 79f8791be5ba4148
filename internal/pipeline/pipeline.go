// Package pipeline runs the chunk, batch and analyze stages over a workspace.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/claimsift/internal/batch"
	"github.com/ppiankov/claimsift/internal/cache"
	"github.com/ppiankov/claimsift/internal/chunk"
	"github.com/ppiankov/claimsift/internal/ingest"
	"github.com/ppiankov/claimsift/internal/llm"
	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/metrics"
	"github.com/ppiankov/claimsift/internal/model"
	"github.com/ppiankov/claimsift/internal/store"
	"github.com/ppiankov/claimsift/internal/worker"
)

// Stage names used in logs and metrics
const (
	StageChunk   = "chunk"
	StageBatch   = "batch"
	StageAnalyze = "analyze"
)

// Options carries collaborators that tests or callers may replace. Zero
// values are built from the config.
type Options struct {
	Splitter chunk.TextSplitter
	Analyzer worker.Analyzer
	Metrics  *metrics.Recorder
	Logger   logger.Logger
}

// Pipeline orchestrates a complete claim extraction run
type Pipeline struct {
	loader    *ingest.Loader
	chunker   *chunk.Chunker
	assembler *batch.Assembler
	workspace *store.Workspace
	processor *worker.BatchProcessor
	metrics   *metrics.Recorder
	config    *model.Config
	provider  string
	log       logger.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fetcher := ingest.NewFetcher(cfg.Input, limiter, log)

	splitter := opts.Splitter
	if splitter == nil {
		splitter = chunk.NewRecursiveSplitter(chunk.SplitterOptions{
			ChunkSize:    cfg.Chunking.ChunkSize,
			ChunkOverlap: cfg.Chunking.ChunkOverlap,
			Separators:   cfg.Chunking.Separators,
		})
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.Input)
		llmConfig.Logger = log
		analyzer = llm.NewAnalyzerFromConfig(llmConfig, llm.AnalyzerOptions{
			Cache:    cache.New(cfg.Cache, cfg.Workspace.Root),
			CacheTTL: cfg.Cache.DiskTTL,
			Logger:   log,
		})
	}

	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}

	processor := worker.NewBatchProcessor(
		analyzer,
		cfg.Concurrency.AnalysisWorkers,
		cfg.RateLimiting.RequestsPerSecond,
		cfg.RateLimiting.BurstSize,
	).WithEndpoint(cfg.LLM.BaseURL).
		WithEndpointRate(cfg.RateLimiting.ModelRequestsPerSecond, cfg.RateLimiting.BurstSize)

	return &Pipeline{
		loader:    ingest.NewLoader(fetcher, log),
		chunker:   chunk.NewChunker(splitter),
		assembler: batch.NewAssembler(cfg.Batching.MaxBatchChars),
		workspace: store.NewWorkspace(cfg.Workspace, log),
		processor: processor,
		metrics:   recorder,
		config:    cfg,
		provider:  cfg.LLM.Provider,
		log:       log,
	}
}

// Workspace returns the directories the pipeline reads and writes
func (p *Pipeline) Workspace() *store.Workspace {
	return p.workspace
}

// Metrics returns the run's metrics recorder
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// RunResult summarises a full run
type RunResult struct {
	RunID      string
	Chunks     int
	Batches    int
	Claims     []model.Claim
	ReportPath string // empty when no report was written
	Duration   time.Duration
}

// Run executes chunk, batch and analyze in sequence. It stops early with an
// empty result when a stage produces nothing. Only workspace I/O failures and
// context cancellation are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{RunID: uuid.NewString()}
	log := p.log.With(logger.String("run_id", result.RunID))

	log.Info("Starting run", logger.String("input", p.config.Input.Path))

	chunks, err := p.chunkPosts(ctx, log)
	if err != nil {
		return nil, err
	}
	result.Chunks = chunks
	if chunks == 0 {
		log.Warn("No chunks produced, stopping")
		result.Duration = time.Since(start)
		return result, nil
	}

	batches, err := p.createBatches(ctx, log)
	if err != nil {
		return nil, err
	}
	result.Batches = batches
	if batches == 0 {
		log.Warn("No batches produced, stopping")
		result.Duration = time.Since(start)
		return result, nil
	}

	claims, reportPath, err := p.analyzeBatches(ctx, log)
	if err != nil {
		return nil, err
	}
	result.Claims = claims
	result.ReportPath = reportPath
	result.Duration = time.Since(start)

	log.Info("Run finished",
		logger.Int("chunks", result.Chunks),
		logger.Int("batches", result.Batches),
		logger.Int("claims", len(result.Claims)),
		logger.Duration("duration", result.Duration),
	)

	return result, nil
}

// ChunkPosts loads the input, splits it into chunks and writes one file per
// chunk. It returns the number of chunks written.
func (p *Pipeline) ChunkPosts(ctx context.Context) (int, error) {
	return p.chunkPosts(ctx, p.log)
}

// CreateBatches groups the chunk files into batch files and returns the
// number of batches written.
func (p *Pipeline) CreateBatches(ctx context.Context) (int, error) {
	return p.createBatches(ctx, p.log)
}

// AnalyzeBatches sends every batch file to the model and returns the flat list
// of claims. The combined report is written only when claims were produced.
func (p *Pipeline) AnalyzeBatches(ctx context.Context) ([]model.Claim, error) {
	claims, _, err := p.analyzeBatches(ctx, p.log)
	return claims, err
}

func (p *Pipeline) chunkPosts(ctx context.Context, log logger.Logger) (int, error) {
	defer p.observeStage(StageChunk, time.Now())

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	posts, err := p.loader.Load(ctx, p.config.Input.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		if errors.Is(err, ingest.ErrInputNotFound) {
			log.Warn("Input file not found", logger.String("input", p.config.Input.Path))
		} else {
			log.Error("Failed to load input", logger.Error(err))
		}
		return 0, nil
	}
	p.metrics.PostsLoaded.Add(float64(len(posts)))

	chunks, err := p.chunker.Chunk(posts)
	if err != nil {
		log.Error("Failed to split posts", logger.Error(err))
		return 0, nil
	}

	paths, err := p.workspace.WriteChunks(chunks)
	if err != nil {
		return 0, fmt.Errorf("write chunks: %w", err)
	}
	p.metrics.ChunksWritten.Add(float64(len(paths)))

	log.Info("Chunking complete",
		logger.Int("posts", len(posts)),
		logger.Int("chunks", len(paths)),
		logger.String("dir", p.workspace.ChunksDir),
	)
	return len(paths), nil
}

func (p *Pipeline) createBatches(ctx context.Context, log logger.Logger) (int, error) {
	defer p.observeStage(StageBatch, time.Now())

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	chunks, skipped, err := p.workspace.ReadChunks()
	if err != nil {
		return 0, fmt.Errorf("read chunks: %w", err)
	}
	p.metrics.ChunkFilesSkipped.Add(float64(skipped))

	batches := p.assembler.Assemble(chunks)

	paths, err := p.workspace.WriteBatches(batches)
	if err != nil {
		return 0, fmt.Errorf("write batches: %w", err)
	}
	p.metrics.BatchesWritten.Add(float64(len(paths)))

	log.Info("Batching complete",
		logger.Int("chunks", len(chunks)),
		logger.Int("skipped", skipped),
		logger.Int("batches", len(paths)),
		logger.Int("max_batch_chars", p.assembler.MaxChars()),
	)
	return len(paths), nil
}

func (p *Pipeline) analyzeBatches(ctx context.Context, log logger.Logger) ([]model.Claim, string, error) {
	defer p.observeStage(StageAnalyze, time.Now())

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	// A report from an earlier run must not outlive a run that finds nothing
	if err := p.workspace.RemoveReport(); err != nil {
		return nil, "", fmt.Errorf("remove stale report: %w", err)
	}

	batches, skipped, err := p.workspace.ReadBatches()
	if err != nil {
		return nil, "", fmt.Errorf("read batches: %w", err)
	}
	p.metrics.BatchFilesSkipped.Add(float64(skipped))

	if len(batches) == 0 {
		log.Warn("No batches to analyze", logger.String("dir", p.workspace.BatchesDir))
		return nil, "", nil
	}

	results := p.processor.ProcessBatches(ctx, batches)

	claims := make([]model.Claim, 0)
	for _, res := range results {
		analysis := res.Analysis
		p.metrics.ObserveModelCall(p.provider, analysis.Outcome(), analysis.Duration, analysis.TokensUsed)
		p.metrics.ClaimsDropped.Add(float64(analysis.Dropped))
		if res.Throttled {
			p.metrics.ThrottledCalls.Inc()
		}

		if err := res.GetError(); err != nil {
			log.Warn("Batch yielded no claims",
				logger.String("batch_id", res.Batch.ID),
				logger.String("outcome", analysis.Outcome()),
				logger.Error(err),
			)
			continue
		}

		for _, c := range analysis.Claims {
			c.BatchID = res.Batch.ID
			c.ChunkCount = len(res.Batch.Chunks)
			claims = append(claims, c)
			p.metrics.ObserveClaim(string(c.Classification))
		}

		log.Info("Batch analyzed",
			logger.String("batch_id", res.Batch.ID),
			logger.Int("chunks", len(res.Batch.Chunks)),
			logger.Int("claims", len(analysis.Claims)),
			logger.Bool("cached", analysis.Cached),
			logger.Duration("duration", analysis.Duration),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if len(claims) == 0 {
		log.Warn("Analysis produced no claims, report not written")
		return claims, "", nil
	}

	path, err := p.workspace.WriteReport(claims)
	if err != nil {
		return nil, "", fmt.Errorf("write report: %w", err)
	}
	log.Info("Wrote report", logger.String("path", path), logger.Int("claims", len(claims)))

	return claims, path, nil
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.ObserveStage(stage, time.Since(start))
}
