package xraytl

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with exponential backoff while it fails with a
// retryable error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	return withRetry(ctx, cfg, nil, fn)
}

func withRetry[T any](ctx context.Context, cfg RetryConfig, logger *slog.Logger, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := backoff(cfg, attempt)
			if logger != nil {
				logger.Warn("backend call failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// IsRetryable checks if an error is retryable. Only a ProviderError marked
// Retryable qualifies; segmentation and language selection errors are
// properties of the data and never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// RetryableBackend wraps a Backend with retry logic.
type RetryableBackend struct {
	backend Backend
	config  RetryConfig
	logger  *slog.Logger
}

// NewRetryableBackend creates a backend that retries retryable failures.
func NewRetryableBackend(backend Backend, cfg RetryConfig, logger *slog.Logger) *RetryableBackend {
	return &RetryableBackend{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}
}

// Translate implements Backend with retry logic.
func (b *RetryableBackend) Translate(ctx context.Context, req BatchRequest) ([]string, error) {
	return withRetry(ctx, b.config, b.logger, func() ([]string, error) {
		return b.backend.Translate(ctx, req)
	})
}
