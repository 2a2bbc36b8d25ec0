package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RetryConfig holds retry configuration for model requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per request.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns sensible retry defaults for model requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// RetryClient wraps a Client with bounded retries and central pacing.
// Pacing is enforced here, once per outbound call, rather than by each
// caller, so concurrent audit workers share one budget.
type RetryClient struct {
	inner   Client
	cfg     RetryConfig
	limiter *rate.Limiter
}

// NewRetryClient wraps inner with retry and pacing behavior.
// requestsPerMinute of zero disables pacing.
func NewRetryClient(inner Client, cfg RetryConfig, requestsPerMinute int) *RetryClient {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return &RetryClient{inner: inner, cfg: cfg, limiter: limiter}
}

// Complete calls the wrapped client, retrying retryable failures with
// exponential backoff. Non-retryable errors are returned immediately.
func (c *RetryClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	backoff := c.cfg.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * c.cfg.BackoffMultiplier)
			if backoff > c.cfg.MaxBackoff {
				backoff = c.cfg.MaxBackoff
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, err := c.inner.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("model unavailable after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}
