// Package metrics records per-run pipeline counters on a private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all claimsift metrics.
	Namespace = "claimsift"
)

// Recorder holds the metrics of one run
type Recorder struct {
	registry *prometheus.Registry

	PostsLoaded       prometheus.Counter
	ChunksWritten     prometheus.Counter
	ChunkFilesSkipped prometheus.Counter
	BatchesWritten    prometheus.Counter
	BatchFilesSkipped prometheus.Counter
	ModelCallsTotal   *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec
	ModelTokensTotal  prometheus.Counter
	ThrottledCalls    prometheus.Counter
	ClaimsExtracted   *prometheus.CounterVec
	ClaimsDropped     prometheus.Counter
	StageDuration     *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{registry: reg}

	r.PostsLoaded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "posts_loaded_total",
		Help:      "Posts read from the input",
	})
	r.ChunksWritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "chunks_written_total",
		Help:      "Chunk files written",
	})
	r.ChunkFilesSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "chunk_files_skipped_total",
		Help:      "Chunk files that could not be read",
	})
	r.BatchesWritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "batches_written_total",
		Help:      "Batch files written",
	})
	r.BatchFilesSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "batch_files_skipped_total",
		Help:      "Batch files that could not be read",
	})
	r.ModelCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "model_calls_total",
			Help:      "Batch analyses by outcome",
		},
		[]string{"provider", "outcome"},
	)
	r.ThrottledCalls = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "model_calls_throttled_total",
		Help:      "Batch analyses that waited on the endpoint rate limit",
	})
	r.ModelCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Duration of batch analyses in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
		},
		[]string{"provider"},
	)
	r.ModelTokensTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "model_tokens_total",
		Help:      "Tokens reported by the model",
	})
	r.ClaimsExtracted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "claims_extracted_total",
			Help:      "Claims kept after validation, by classification",
		},
		[]string{"classification"},
	)
	r.ClaimsDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "claims_dropped_total",
		Help:      "Claims removed by validation",
	})
	r.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveModelCall records one batch analysis
func (r *Recorder) ObserveModelCall(provider, outcome string, d time.Duration, tokens int) {
	if provider == "" {
		provider = "none"
	}
	r.ModelCallsTotal.WithLabelValues(provider, outcome).Inc()
	r.ModelCallDuration.WithLabelValues(provider).Observe(d.Seconds())
	if tokens > 0 {
		r.ModelTokensTotal.Add(float64(tokens))
	}
}

// ObserveClaim counts one extracted claim
func (r *Recorder) ObserveClaim(classification string) {
	r.ClaimsExtracted.WithLabelValues(classification).Inc()
}

// ObserveStage records how long a pipeline stage took
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes the registry in Prometheus text format, for the
// node_exporter textfile collector or later inspection
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
