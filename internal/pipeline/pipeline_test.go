package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/claimsift/internal/llm"
	"github.com/ppiankov/claimsift/internal/metrics"
	"github.com/ppiankov/claimsift/internal/model"
)

type fakeAnalyzer struct {
	claims []model.Claim
	err    error

	mu       sync.Mutex
	contents []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, content string) llm.Analysis {
	f.mu.Lock()
	f.contents = append(f.contents, content)
	f.mu.Unlock()

	if f.err != nil {
		return llm.Analysis{Err: f.err}
	}
	claims := make([]model.Claim, len(f.claims))
	copy(claims, f.claims)
	return llm.Analysis{Claims: claims}
}

func writeInput(t *testing.T, dir string, posts []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(posts)
	require.NoError(t, err)
	path := filepath.Join(dir, "reddit_search_output.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func longPost() map[string]any {
	return map[string]any{
		"title":    "A long post",
		"url":      "https://www.reddit.com/r/science/comments/abc/a_long_post/",
		"selftext": strings.Repeat("lorem ipsum dolor sit amet ", 370),
		"score":    42,
	}
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Workspace.Root = dir
	cfg.Input.Path = filepath.Join(dir, "reddit_search_output.json")
	cfg.Cache.Enabled = false
	return cfg
}

func TestRun_FailingAnalysisWritesNoReport(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: connection refused", llm.ErrRuntimeUnavailable)}
	recorder := metrics.NewRecorder()
	p := NewPipeline(cfg, Options{Analyzer: analyzer, Metrics: recorder})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, result.Chunks, 1)
	assert.Equal(t, 1, result.Batches)
	assert.Empty(t, result.Claims)
	assert.Empty(t, result.ReportPath)
	assert.NoFileExists(t, p.Workspace().ReportPath())

	chunkFiles, _ := filepath.Glob(filepath.Join(p.Workspace().ChunksDir, "chunk_*.json"))
	assert.Len(t, chunkFiles, result.Chunks)
	assert.FileExists(t, filepath.Join(p.Workspace().BatchesDir, "batch_01.json"))

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.ModelCallsTotal.WithLabelValues("llamacpp", llm.OutcomeUnavailable)))
	assert.Equal(t, float64(result.Chunks), testutil.ToFloat64(recorder.ChunksWritten))
}

func TestRun_StampsClaimsAndWritesReport(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	analyzer := &fakeAnalyzer{claims: []model.Claim{
		{Claim: "The sky is green", Classification: model.ClassificationFalse, Reason: "It is blue", Source: llm.ClaimSource},
		{Claim: "Water boils at 100C at sea level", Classification: model.ClassificationTrue},
	}}
	p := NewPipeline(cfg, Options{Analyzer: analyzer})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Claims, 2)
	assert.NotEmpty(t, result.RunID)

	for _, c := range result.Claims {
		assert.Equal(t, "batch_01", c.BatchID)
		assert.Equal(t, result.Chunks, c.ChunkCount)
	}

	require.Equal(t, p.Workspace().ReportPath(), result.ReportPath)
	report, err := p.Workspace().ReadReport()
	require.NoError(t, err)
	assert.Equal(t, result.Claims, report)

	require.Len(t, analyzer.contents, 1)
	assert.Contains(t, analyzer.contents[0], model.ChunkSeparator)
	assert.True(t, strings.HasPrefix(analyzer.contents[0], "Title: A long post\nURL: "))
}

func TestRun_MultipleBatches(t *testing.T) {
	cfg := testConfig(t)
	cfg.Batching.MaxBatchChars = 1000
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	analyzer := &fakeAnalyzer{claims: []model.Claim{{Claim: "c", Classification: model.ClassificationUnverifiable}}}
	p := NewPipeline(cfg, Options{Analyzer: analyzer})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Chunks, result.Batches)
	require.Len(t, result.Claims, result.Batches)
	for i, c := range result.Claims {
		assert.Equal(t, fmt.Sprintf("batch_%02d", i+1), c.BatchID)
		assert.Equal(t, 1, c.ChunkCount)
	}
}

func TestRun_ModelEndpointRate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Batching.MaxBatchChars = 1000
	cfg.RateLimiting.ModelRequestsPerSecond = 100
	cfg.RateLimiting.BurstSize = 1
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	recorder := metrics.NewRecorder()
	analyzer := &fakeAnalyzer{claims: []model.Claim{{Claim: "c", Classification: model.ClassificationTrue}}}
	p := NewPipeline(cfg, Options{Analyzer: analyzer, Metrics: recorder})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, result.Batches, 1)
	assert.Equal(t, float64(result.Batches-1), testutil.ToFloat64(recorder.ThrottledCalls))
}

func TestRun_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	analyzer := &fakeAnalyzer{}
	p := NewPipeline(cfg, Options{Analyzer: analyzer})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Chunks)
	assert.Zero(t, result.Batches)
	assert.Empty(t, result.Claims)
	assert.Empty(t, analyzer.contents)
	assert.NoDirExists(t, p.Workspace().ChunksDir)
}

func TestRun_EmptyInputStopsAfterChunking(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{})

	p := NewPipeline(cfg, Options{Analyzer: &fakeAnalyzer{}})
	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Chunks)
	assert.NoDirExists(t, p.Workspace().BatchesDir)
}

func TestAnalyzeBatches_RemovesStaleReport(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	p := NewPipeline(cfg, Options{Analyzer: &fakeAnalyzer{claims: []model.Claim{{Claim: "old"}}}})
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, p.Workspace().ReportPath())

	failing := NewPipeline(cfg, Options{Analyzer: &fakeAnalyzer{err: errors.New("boom")}})
	claims, err := failing.AnalyzeBatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.NoFileExists(t, failing.Workspace().ReportPath())
}

func TestStages_RunIndependently(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost(), longPost()})
	p := NewPipeline(cfg, Options{Analyzer: &fakeAnalyzer{claims: []model.Claim{{Claim: "x"}}}})
	ctx := context.Background()

	chunks, err := p.ChunkPosts(ctx)
	require.NoError(t, err)
	assert.Greater(t, chunks, 2)

	// A malformed chunk file is skipped by the batch stage
	require.NoError(t, os.WriteFile(filepath.Join(p.Workspace().ChunksDir, "chunk_9999.json"), []byte("{"), 0o644))

	batches, err := p.CreateBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics().ChunkFilesSkipped))

	claims, err := p.AnalyzeBatches(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, chunks, claims[0].ChunkCount)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg.Workspace.Root, []map[string]any{longPost()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(cfg, Options{Analyzer: &fakeAnalyzer{}})
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	r.RenderSummary(&RunResult{
		RunID:   "run-1",
		Chunks:  6,
		Batches: 1,
		Claims: []model.Claim{
			{Claim: "The sky is green", Classification: model.ClassificationFalse, Reason: "It is blue", BatchID: "batch_01", ChunkCount: 6},
		},
		ReportPath: "analysis_results/combined_analysis_report.json",
	})

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "1. [False] The sky is green")
	assert.Contains(t, out, "It is blue")
	assert.Contains(t, out, "batch_01, 6 chunks")
	assert.Contains(t, out, "combined_analysis_report.json")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_NoReport(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true).RenderSummary(&RunResult{RunID: "run-2"})
	assert.Contains(t, buf.String(), "not written (no claims)")
}
