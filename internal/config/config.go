// Package config provides explicit configuration for the audit pipeline.
// A Config is constructed once and passed by reference into the components
// that need it; there is no process-wide singleton.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures the language model client.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	// MaxAttempts bounds retries on retryable model errors.
	MaxAttempts       int           `yaml:"max_attempts"`
	BackoffBase       time.Duration `yaml:"backoff_base"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`

	// RequestsPerMinute paces outbound model calls centrally.
	// Zero disables pacing.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// RetrievalConfig holds the retrieval quality policy constants.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`

	// SpreadThreshold is the minimum max-min score separation required
	// for HIGH confidence.
	SpreadThreshold float64 `yaml:"spread_threshold"`

	// MinSufficientChunks is the minimum number of non-empty chunks for
	// evidence to count as sufficient at all.
	MinSufficientChunks int `yaml:"min_sufficient_chunks"`

	// HighConfidenceChunks is the non-empty chunk count required, together
	// with the spread threshold, for HIGH confidence.
	HighConfidenceChunks int `yaml:"high_confidence_chunks"`
}

// AuditConfig configures the audit engine.
type AuditConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	NonCompliantPenalty float64 `yaml:"non_compliant_penalty"`
	PartialPenalty      float64 `yaml:"partial_penalty"`

	// Concurrency bounds the per-requirement worker pool. 1 runs the
	// audit sequentially.
	Concurrency int `yaml:"concurrency"`

	// RequestDelay is an optional pause between requirements, kept for
	// backends without server-side rate limiting. Zero disables it.
	RequestDelay time.Duration `yaml:"request_delay"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port         string `yaml:"port"`
	DatabaseURL  string `yaml:"database_url"`
	AuthIssuer   string `yaml:"auth_issuer"`
	AuthAudience string `yaml:"auth_audience"`
}

// Config is the top-level configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Audit     AuditConfig     `yaml:"audit"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns the baseline configuration. Values that diverge between
// deployments are presets here, overridden by file or environment.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "google",
			Model:             "gemini-1.5-pro",
			Temperature:       0.0,
			MaxTokens:         8192,
			Timeout:           120 * time.Second,
			MaxAttempts:       3,
			BackoffBase:       2 * time.Second,
			BackoffMultiplier: 2.0,
			MaxBackoff:        30 * time.Second,
			RequestsPerMinute: 0,
		},
		Retrieval: RetrievalConfig{
			TopK:                 4,
			SpreadThreshold:      0.15,
			MinSufficientChunks:  2,
			HighConfidenceChunks: 3,
		},
		Audit: AuditConfig{
			ChunkSize:           1000,
			ChunkOverlap:        100,
			NonCompliantPenalty: 20,
			PartialPenalty:      10,
			Concurrency:         1,
			RequestDelay:        0,
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, and environment
// variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VERITY_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("VERITY_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && c.LLM.Provider == "google" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.LLM.Provider == "anthropic" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("VERITY_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("VERITY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audit.Concurrency = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Server.DatabaseURL = v
	}
	if v := os.Getenv("VERITY_AUTH_ISSUER"); v != "" {
		c.Server.AuthIssuer = v
	}
	if v := os.Getenv("VERITY_AUTH_AUDIENCE"); v != "" {
		c.Server.AuthAudience = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be >= 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MinSufficientChunks < 1 {
		return fmt.Errorf("retrieval.min_sufficient_chunks must be >= 1, got %d", c.Retrieval.MinSufficientChunks)
	}
	if c.Retrieval.HighConfidenceChunks < c.Retrieval.MinSufficientChunks {
		return fmt.Errorf("retrieval.high_confidence_chunks must be >= min_sufficient_chunks")
	}
	if c.Audit.ChunkSize < 1 {
		return fmt.Errorf("audit.chunk_size must be >= 1, got %d", c.Audit.ChunkSize)
	}
	if c.Audit.ChunkOverlap < 0 || c.Audit.ChunkOverlap >= c.Audit.ChunkSize {
		return fmt.Errorf("audit.chunk_overlap must be in [0, chunk_size), got %d", c.Audit.ChunkOverlap)
	}
	if c.Audit.Concurrency < 1 {
		return fmt.Errorf("audit.concurrency must be >= 1, got %d", c.Audit.Concurrency)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be >= 1, got %d", c.LLM.MaxAttempts)
	}
	return nil
}
