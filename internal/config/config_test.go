package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 0.15, cfg.Retrieval.SpreadThreshold)
	assert.Equal(t, 2, cfg.Retrieval.MinSufficientChunks)
	assert.Equal(t, 3, cfg.Retrieval.HighConfidenceChunks)
	assert.Equal(t, 1000, cfg.Audit.ChunkSize)
	assert.Equal(t, 100, cfg.Audit.ChunkOverlap)
	assert.Equal(t, 20.0, cfg.Audit.NonCompliantPenalty)
	assert.Equal(t, 10.0, cfg.Audit.PartialPenalty)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verity.yaml")
	content := `
llm:
  provider: openai
  model: gpt-4o
  max_attempts: 5
retrieval:
  top_k: 6
audit:
  concurrency: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.LLM.MaxAttempts)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, 4, cfg.Audit.Concurrency)
	// Untouched values keep defaults.
	assert.Equal(t, 0.15, cfg.Retrieval.SpreadThreshold)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("VERITY_LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("VERITY_CONCURRENCY", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 2, cfg.Audit.Concurrency)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/verity.yaml")
	assert.Error(t, err)
}

func TestValidate_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"zero min chunks", func(c *Config) { c.Retrieval.MinSufficientChunks = 0 }},
		{"high below min", func(c *Config) { c.Retrieval.HighConfidenceChunks = 1 }},
		{"overlap >= size", func(c *Config) { c.Audit.ChunkOverlap = c.Audit.ChunkSize }},
		{"zero concurrency", func(c *Config) { c.Audit.Concurrency = 0 }},
		{"zero attempts", func(c *Config) { c.LLM.MaxAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefault_RetryBackoff(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.LLM.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.LLM.MaxBackoff)
}
