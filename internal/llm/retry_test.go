package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns scripted results in order.
type fakeClient struct {
	calls   int
	results []string
	errs    []error
}

func (f *fakeClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], f.errs[i]
}

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestRetryClient_SucceedsFirstAttempt(t *testing.T) {
	inner := &fakeClient{results: []string{"ok"}, errs: []error{nil}}
	client := NewRetryClient(inner, fastRetryConfig(3), 0)

	text, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClient_RetriesRetryableError(t *testing.T) {
	transient := &ModelError{Provider: "google", StatusCode: 429, Message: "rate limited", Retryable: true}
	inner := &fakeClient{
		results: []string{"", "", "recovered"},
		errs:    []error{transient, transient, nil},
	}
	client := NewRetryClient(inner, fastRetryConfig(3), 0)

	text, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClient_StopsOnNonRetryable(t *testing.T) {
	fatal := &ModelError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	inner := &fakeClient{results: []string{""}, errs: []error{fatal}}
	client := NewRetryClient(inner, fastRetryConfig(3), 0)

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)

	var me *ModelError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 401, me.StatusCode)
}

func TestRetryClient_ExhaustsAttempts(t *testing.T) {
	transient := &ModelError{Provider: "google", StatusCode: 503, Message: "overloaded", Retryable: true}
	inner := &fakeClient{results: []string{""}, errs: []error{transient}}
	client := NewRetryClient(inner, fastRetryConfig(3), 0)

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.Contains(t, err.Error(), "model unavailable after 3 attempts")
	assert.True(t, errors.Is(err, transient))
}

func TestRetryClient_ContextCancelledDuringBackoff(t *testing.T) {
	transient := &ModelError{Provider: "google", StatusCode: 503, Message: "overloaded", Retryable: true}
	inner := &fakeClient{results: []string{""}, errs: []error{transient}}

	cfg := fastRetryConfig(3)
	cfg.BackoffBase = time.Second
	client := NewRetryClient(inner, cfg, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.Complete(ctx, "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClient_PacingAllowsCalls(t *testing.T) {
	inner := &fakeClient{results: []string{"ok"}, errs: []error{nil}}
	// Generous rate so the test does not stall.
	client := NewRetryClient(inner, fastRetryConfig(1), 6000)

	text, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
