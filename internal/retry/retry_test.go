package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig() *Config {
	c := DefaultConfig()
	c.InitialDelay = time.Millisecond
	c.MaxDelay = 5 * time.Millisecond
	return c
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries to be 3, got %d", config.MaxRetries)
	}
	if config.InitialDelay != 100*time.Millisecond {
		t.Errorf("Expected InitialDelay to be 100ms, got %v", config.InitialDelay)
	}
	if config.BackoffFactor != 2.0 {
		t.Errorf("Expected BackoffFactor to be 2.0, got %f", config.BackoffFactor)
	}
}

func TestConfig_Retryable(t *testing.T) {
	config := DefaultConfig()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"database is locked", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"syntax error", errors.New(`syntax error at or near "FROM"`), false},
		{"context canceled", context.Canceled, false},
		{"wrapped deadline", errors.Join(errors.New("timeout"), context.DeadlineExceeded), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := config.Retryable(tt.err); got != tt.expected {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestConfig_Delay(t *testing.T) {
	config := &Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second}
	for attempt, w := range want {
		if got := config.Delay(attempt); got != w {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestDo_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("database is locked")
		}
		return 42, nil
	})
	if err != nil || got != 42 || calls != 3 {
		t.Fatalf("got=%d err=%v calls=%d", got, err, calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	boom := errors.New("no such table")
	err := WithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	if err == nil || !strings.Contains(err.Error(), "after 4 attempts") || calls != 4 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := &Config{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1, RetryableErrors: []string{"locked"}}
	err := WithRetry(ctx, config, func(context.Context) error {
		cancel()
		return errors.New("database is locked")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
