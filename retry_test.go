package xraytl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestWithRetry_Success(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		return "ok", nil
	})

	if err != nil || result != "ok" {
		t.Fatalf("WithRetry() = %q, %v", result, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_RetryableError(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &ProviderError{Message: "rate limited", Retryable: true}
		}
		return "ok", nil
	})

	if err != nil || result != "ok" {
		t.Fatalf("WithRetry() = %q, %v", result, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"provider", &ProviderError{Message: "invalid API key"}},
		{"no language", &NoRecommendedLanguageError{EntityID: "a"}},
		{"segmentation", &SegmentationMismatchError{Text: "a"}},
		{"count mismatch", &CountMismatchError{Expected: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := WithRetry(context.Background(), fastRetry(3), func() (string, error) {
				calls++
				return "", tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestWithRetry_MaxRetriesExceeded(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetry(2), func() (string, error) {
		calls++
		return "", &ProviderError{Message: "rate limited", Retryable: true}
	})

	if err == nil {
		t.Fatal("expected error after max retries")
	}
	// Initial attempt + 2 retries
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, cfg, func() (string, error) {
		return "", &ProviderError{Message: "rate limited", Retryable: true}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second}
	for attempt, w := range want {
		if got := backoff(cfg, attempt); got != w {
			t.Errorf("backoff(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"wrapped retryable", &TranslationError{Message: "x", Cause: &ProviderError{Retryable: true}}, true},
		{"generic error", errors.New("some error"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 3 || cfg.BaseDelay != time.Second || cfg.MaxDelay != 30*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

type failingBackend struct {
	failCount int
	calls     int
}

func (b *failingBackend) Translate(ctx context.Context, req BatchRequest) ([]string, error) {
	b.calls++
	if b.calls <= b.failCount {
		return nil, &ProviderError{Message: "temporary failure", Retryable: true}
	}
	return []string{"ok"}, nil
}

func TestRetryableBackend(t *testing.T) {
	inner := &failingBackend{failCount: 2}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	backend := NewRetryableBackend(inner, fastRetry(3), logger)

	result, err := backend.Translate(context.Background(), BatchRequest{Texts: []string{"hello"}, TargetLang: "rus"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(result) != 1 || result[0] != "ok" {
		t.Errorf("unexpected result: %v", result)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
	if strings.Count(logs.String(), "retrying") != 2 {
		t.Errorf("expected 2 retry log lines, got:\n%s", logs.String())
	}
}
