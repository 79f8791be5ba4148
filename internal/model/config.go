package model

import "time"

// Config holds all runtime configuration for claimsift
type Config struct {
	Input        InputConfig        `yaml:"input" mapstructure:"input"`
	Workspace    WorkspaceConfig    `yaml:"workspace" mapstructure:"workspace"`
	Chunking     ChunkingConfig     `yaml:"chunking" mapstructure:"chunking"`
	Batching     BatchingConfig     `yaml:"batching" mapstructure:"batching"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics" mapstructure:"metrics"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// InputConfig controls where posts are loaded from
type InputConfig struct {
	Path          string        `yaml:"path" mapstructure:"path"`                     // File path or http(s) URL
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // HTTP timeout for URL inputs
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`         // HTTP User-Agent
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"` // Cap on downloaded bytes
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"` // Check robots.txt before fetching
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// WorkspaceConfig names the intermediate directories. Relative paths are
// resolved against Root.
type WorkspaceConfig struct {
	Root       string `yaml:"root" mapstructure:"root"`
	ChunksDir  string `yaml:"chunks_dir" mapstructure:"chunks_dir"`
	BatchesDir string `yaml:"batches_dir" mapstructure:"batches_dir"`
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
	ReportName string `yaml:"report_name" mapstructure:"report_name"`
}

// ChunkingConfig configures the text splitter
type ChunkingConfig struct {
	ChunkSize    int      `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	Separators   []string `yaml:"separators" mapstructure:"separators"`
}

// BatchingConfig configures the batch assembler
type BatchingConfig struct {
	MaxBatchChars int `yaml:"max_batch_chars" mapstructure:"max_batch_chars"`
}

// LLMConfig holds model provider configuration
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // llamacpp, ollama, openai, anthropic, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	ContextSize int     `yaml:"context_size" mapstructure:"context_size"` // num_ctx for Ollama
}

// CacheConfig controls the model response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	AnalysisWorkers int `yaml:"analysis_workers" mapstructure:"analysis_workers"`
}

// RateLimitingConfig throttles outbound requests per host
type RateLimitingConfig struct {
	RequestsPerSecond      float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // <= 0 means unlimited
	BurstSize              int     `yaml:"burst_size" mapstructure:"burst_size"`
	ModelRequestsPerSecond float64 `yaml:"model_requests_per_second" mapstructure:"model_requests_per_second"` // <= 0 falls back to requests_per_second
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" mapstructure:"textfile_path"`
}

// OutputConfig controls terminal output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

// Defaults shared by the pipeline and the CLI
const (
	DefaultInputPath     = "reddit_search_output.json"
	DefaultChunkSize     = 2000
	DefaultChunkOverlap  = 200
	DefaultMaxBatchChars = 8000 * 4 // roughly 8K tokens
	DefaultMaxTokens     = 3072
	DefaultTemperature   = 0.3
	DefaultReportName    = "combined_analysis_report.json"
)

// DefaultSeparators is the splitter's separator preference order
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path:          DefaultInputPath,
			Timeout:       30 * time.Second,
			UserAgent:     "claimsift/0.1 (+https://github.com/ppiankov/claimsift)",
			MaxBodyBytes:  20_000_000,
			RespectRobots: true,
		},
		Workspace: WorkspaceConfig{
			Root:       ".",
			ChunksDir:  "chunks",
			BatchesDir: "batches",
			ResultsDir: "analysis_results",
			ReportName: DefaultReportName,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			Separators:   DefaultSeparators(),
		},
		Batching: BatchingConfig{
			MaxBatchChars: DefaultMaxBatchChars,
		},
		LLM: LLMConfig{
			Provider:    "llamacpp",
			Model:       "phi4",
			Timeout:     600, // local inference on a full batch is slow
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
			ContextSize: 18000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".claimsift-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			AnalysisWorkers: 1,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
