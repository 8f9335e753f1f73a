// Package retry re-runs run-history writes that fail with transient database
// errors, backing off exponentially between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/loykin/apiscenario/internal/common"
)

// Config holds configuration for store operation retries
type Config struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialDelay    time.Duration // Initial delay before first retry
	MaxDelay        time.Duration // Maximum delay between retries
	BackoffFactor   float64       // Multiplier for exponential backoff
	RetryableErrors []string      // Error substrings that trigger retries
}

// DefaultConfig returns the retry policy used by the history store
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: []string{
			"connection refused",
			"connection reset",
			"timeout",
			"temporary failure",
			"deadlock",
			"database is locked",
			"sqlite_busy",
			"broken pipe",
		},
	}
}

// Retryable reports whether err should trigger another attempt.
// Context cancellation never does.
func (rc *Config) Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, retryableErr := range rc.RetryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}
	return false
}

// Delay returns the wait before retry number attempt (0-based), capped at MaxDelay
func (rc *Config) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}
	delay := time.Duration(float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt)))
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	return delay
}

// Do runs op until it succeeds, fails with a non-retryable error, exhausts
// MaxRetries or ctx is done. A nil config uses DefaultConfig.
func Do[T any](ctx context.Context, config *Config, op func(ctx context.Context) (T, error)) (T, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger := common.GetLogger().WithComponent("store-retry")

	var zero T
	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		out, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("store operation succeeded after retry", "attempt", attempt+1)
			}
			return out, nil
		}
		lastErr = err

		if attempt == config.MaxRetries {
			break
		}
		if !config.Retryable(err) {
			logger.Debug("store operation failed with non-retryable error", "error", err, "attempt", attempt+1)
			return zero, err
		}

		delay := config.Delay(attempt)
		logger.Warn("store operation failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"max_attempts", config.MaxRetries+1,
			"retry_delay", delay)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("operation cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	logger.Error("store operation failed after all retry attempts", "error", lastErr, "attempts", config.MaxRetries+1)
	return zero, fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// WithRetry is Do for operations without a result.
func WithRetry(ctx context.Context, config *Config, op func(ctx context.Context) error) error {
	_, err := Do(ctx, config, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
