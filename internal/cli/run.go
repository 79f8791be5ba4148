package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
	"github.com/ppiankov/claimsift/internal/pipeline"
)

var noCache bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chunk, batch and analyze the input in one go",
	Long: `Run executes the three stages in sequence:
- chunk: load posts and split them into chunk files
- batch: group chunk files into character-budgeted batch files
- analyze: send each batch to the model and collect claims

The combined report is written only when at least one claim was extracted.

Example:
  claimsift run
  claimsift run --input dump.json --workdir ./work
  claimsift run --provider ollama --model phi4 --metrics-file run.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return runPipeline(cmd, cfg)
	},
}

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Split the input posts into chunk files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, pipeline.StageChunk)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Group existing chunk files into batch files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, pipeline.StageBatch)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Send existing batch files to the model and write the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, pipeline.StageAnalyze)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("provider", "", "model provider (llamacpp, ollama, openai, anthropic; empty disables analysis)")
	flags.String("model", "", "model name")
	flags.String("base-url", "", "model server base URL")
	flags.Int("workers", 0, "concurrent batch analyses (default 1)")
	flags.Int("max-batch-chars", 0, "character budget per batch")
	flags.Int("chunk-size", 0, "maximum characters per chunk")
	flags.BoolVar(&noCache, "no-cache", false, "disable the model response cache")

	bindFlag("llm.provider", "provider")
	bindFlag("llm.model", "model")
	bindFlag("llm.base_url", "base-url")
	bindFlag("concurrency.analysis_workers", "workers")
	bindFlag("batching.max_batch_chars", "max-batch-chars")
	bindFlag("chunking.chunk_size", "chunk-size")

	rootCmd.AddCommand(runCmd, chunkCmd, batchCmd, analyzeCmd)
}

// newLogger builds the run logger from config. --verbose lowers the level to debug.
func newLogger(cfg *model.Config) (logger.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Output.Verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: cfg.Logging.Format})
}

// runContext applies --timeout to the command context
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func newPipeline(cfg *model.Config, log logger.Logger) *pipeline.Pipeline {
	if noCache {
		cfg.Cache.Enabled = false
	}
	return pipeline.NewPipeline(cfg, pipeline.Options{Logger: log})
}

func runPipeline(cmd *cobra.Command, cfg *model.Config) (err error) {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := runContext(cmd)
	defer cancel()

	p := newPipeline(cfg, log)
	defer func() {
		if mErr := writeMetrics(p, cfg, log); mErr != nil && err == nil {
			err = mErr
		}
	}()

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.NoColor).RenderSummary(result)
	return nil
}

func runStage(cmd *cobra.Command, stage string) (err error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := runContext(cmd)
	defer cancel()

	p := newPipeline(cfg, log)
	defer func() {
		if mErr := writeMetrics(p, cfg, log); mErr != nil && err == nil {
			err = mErr
		}
	}()

	out := cmd.OutOrStdout()
	ws := p.Workspace()
	start := time.Now()

	switch stage {
	case pipeline.StageChunk:
		n, err := p.ChunkPosts(ctx)
		if err != nil {
			return fmt.Errorf("chunk failed: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %d chunks to %s (%s)\n", n, ws.ChunksDir, time.Since(start).Round(time.Millisecond))

	case pipeline.StageBatch:
		n, err := p.CreateBatches(ctx)
		if err != nil {
			return fmt.Errorf("batch failed: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %d batches to %s (%s)\n", n, ws.BatchesDir, time.Since(start).Round(time.Millisecond))

	case pipeline.StageAnalyze:
		claims, err := p.AnalyzeBatches(ctx)
		if err != nil {
			return fmt.Errorf("analyze failed: %w", err)
		}
		if len(claims) == 0 {
			fmt.Fprintln(out, "✗ No claims extracted; report not written")
			return nil
		}
		fmt.Fprintf(out, "✓ Extracted %d claims into %s\n\n", len(claims), ws.ReportPath())
		pipeline.NewRenderer(out, cfg.Output.NoColor).RenderClaims(claims)
	}

	return nil
}

func writeMetrics(p *pipeline.Pipeline, cfg *model.Config, log logger.Logger) error {
	path := cfg.Metrics.TextfilePath
	if path == "" {
		return nil
	}
	if err := p.Metrics().WriteTextfile(path); err != nil {
		return err
	}
	log.Debug("Wrote metrics", logger.String("path", path))
	return nil
}
