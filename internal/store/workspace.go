// Package store persists pipeline intermediates in the workspace directories.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
)

// Workspace is the on-disk layout of a run: one directory of chunk files, one
// of batch files and one holding the combined report.
type Workspace struct {
	ChunksDir  string
	BatchesDir string
	ResultsDir string
	ReportName string

	log logger.Logger
}

// NewWorkspace resolves the configured directories against cfg.Root
func NewWorkspace(cfg model.WorkspaceConfig, log logger.Logger) *Workspace {
	if log == nil {
		log = logger.NewNop()
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}
	reportName := cfg.ReportName
	if reportName == "" {
		reportName = model.DefaultReportName
	}

	return &Workspace{
		ChunksDir:  resolve(root, cfg.ChunksDir, "chunks"),
		BatchesDir: resolve(root, cfg.BatchesDir, "batches"),
		ResultsDir: resolve(root, cfg.ResultsDir, "analysis_results"),
		ReportName: reportName,
		log:        log,
	}
}

func resolve(root, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ChunkFileName returns the file name of the n-th chunk (1-based)
func ChunkFileName(n int) string {
	return fmt.Sprintf("chunk_%04d.json", n)
}

// BatchFileName returns the file name for a batch id
func BatchFileName(id string) string {
	return id + ".json"
}

// WriteChunks replaces every *.json file in the chunk directory with one file
// per chunk and returns the written paths.
func (w *Workspace) WriteChunks(chunks []model.Document) ([]string, error) {
	if err := resetDir(w.ChunksDir); err != nil {
		return nil, fmt.Errorf("prepare chunks dir: %w", err)
	}

	paths := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		path := filepath.Join(w.ChunksDir, ChunkFileName(i+1))
		if err := writeJSON(path, chunk); err != nil {
			return paths, fmt.Errorf("write chunk %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// ReadChunks loads chunk files in filename order. Unreadable or malformed
// files are logged and skipped; the number skipped is returned. A missing
// directory yields no chunks.
func (w *Workspace) ReadChunks() ([]model.Document, int, error) {
	files, err := listJSON(w.ChunksDir)
	if err != nil {
		return nil, 0, err
	}

	var chunks []model.Document
	skipped := 0
	for _, path := range files {
		var chunk model.Document
		if err := readJSON(path, &chunk); err != nil {
			w.log.Warn("Skipping unreadable chunk file",
				logger.String("path", path),
				logger.Error(err),
			)
			skipped++
			continue
		}
		chunks = append(chunks, chunk)
	}

	return chunks, skipped, nil
}

// WriteBatches replaces every *.json file in the batch directory with one
// JSON array of chunks per batch and returns the written paths.
func (w *Workspace) WriteBatches(batches []model.Batch) ([]string, error) {
	if err := resetDir(w.BatchesDir); err != nil {
		return nil, fmt.Errorf("prepare batches dir: %w", err)
	}

	paths := make([]string, 0, len(batches))
	for _, b := range batches {
		path := filepath.Join(w.BatchesDir, BatchFileName(b.ID))
		chunks := b.Chunks
		if chunks == nil {
			chunks = []model.Document{}
		}
		if err := writeJSON(path, chunks); err != nil {
			return paths, fmt.Errorf("write %s: %w", b.ID, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// ReadBatches loads batch files in filename order. The batch id is the file
// stem. Unreadable, malformed and empty batch files are logged and skipped.
func (w *Workspace) ReadBatches() ([]model.Batch, int, error) {
	files, err := listJSON(w.BatchesDir)
	if err != nil {
		return nil, 0, err
	}

	var batches []model.Batch
	skipped := 0
	for _, path := range files {
		var chunks []model.Document
		if err := readJSON(path, &chunks); err != nil {
			w.log.Warn("Skipping unreadable batch file",
				logger.String("path", path),
				logger.Error(err),
			)
			skipped++
			continue
		}
		if len(chunks) == 0 {
			w.log.Warn("Skipping empty batch file", logger.String("path", path))
			skipped++
			continue
		}
		batches = append(batches, model.Batch{
			ID:     strings.TrimSuffix(filepath.Base(path), ".json"),
			Chunks: chunks,
		})
	}

	return batches, skipped, nil
}

// ReportPath is where the combined report is written
func (w *Workspace) ReportPath() string {
	return filepath.Join(w.ResultsDir, w.ReportName)
}

// WriteReport writes the claims as a pretty-printed JSON array
func (w *Workspace) WriteReport(claims []model.Claim) (string, error) {
	if err := os.MkdirAll(w.ResultsDir, 0755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := w.ReportPath()
	if err := writeJSON(path, claims); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadReport loads a previously written report
func (w *Workspace) ReadReport() ([]model.Claim, error) {
	var claims []model.Claim
	if err := readJSON(w.ReportPath(), &claims); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return claims, nil
}

// RemoveReport deletes the combined report if present
func (w *Workspace) RemoveReport() error {
	err := os.Remove(w.ReportPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale report: %w", err)
	}
	return nil
}

// resetDir creates dir and deletes any *.json files already in it
func resetDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// listJSON returns the *.json files in dir sorted by name
func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
