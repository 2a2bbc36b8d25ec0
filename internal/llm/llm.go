// Package llm provides language model clients for the audit pipeline.
// All providers implement the same narrow Client interface so the agent
// and orchestrator never depend on a concrete backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client sends a (system prompt, user prompt) pair to a language model and
// returns the free-text response.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configures a provider client.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New creates a provider client for the configured backend.
func New(opts Options) (Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key required for provider %q", opts.Provider)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}

	switch opts.Provider {
	case "google":
		return NewGoogleClient(opts), nil
	case "openai":
		return NewOpenAIClient(opts), nil
	case "anthropic":
		return NewAnthropicClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", opts.Provider)
	}
}

// ModelError is a typed failure from a model backend. Errors are returned,
// never substituted into response text, so downstream status inference cannot
// misread a transport failure as a verdict.
type ModelError struct {
	Provider   string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *ModelError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// IsRetryable reports whether err is a transient model failure worth retrying.
func IsRetryable(err error) bool {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}

// apiError builds a ModelError from an HTTP response. Rate limits and server
// errors are retryable; auth and request errors are not.
func apiError(provider string, statusCode int, body []byte) error {
	return &ModelError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    truncate(string(body), 500),
		Retryable:  statusCode == http.StatusTooManyRequests || statusCode >= 500,
	}
}

// transportError wraps a network-level failure as retryable.
func transportError(provider string, err error) error {
	return &ModelError{
		Provider:  provider,
		Message:   err.Error(),
		Retryable: true,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
