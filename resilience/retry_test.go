package resilience

import (
	"context"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/kbukum/sessionscribe/errors"
)

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastConfig(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Fatalf("unexpected result %q, %v", result, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_RetriesTransientIO(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	result, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.IO("read", "alice.json", fmt.Errorf("resource busy"))
		}
		return 42, nil
	})
	if err != nil || result != 42 {
		t.Fatalf("unexpected result %d, %v", result, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("unexpected OnRetry attempts %v", retried)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing file", errors.IO("read", "gone.json", fs.ErrNotExist)},
		{"invalid input", errors.InvalidInput("segments", "bad")},
		{"plain error", fmt.Errorf("boom")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			_, err := Retry(context.Background(), fastConfig(), func() (struct{}, error) {
				calls++
				return struct{}{}, tc.err
			})
			if err != tc.err {
				t.Errorf("expected the original error, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
		})
	}
}

func TestRetry_ExceedsMaxAttempts(t *testing.T) {
	calls := 0
	transient := errors.IO("write", "merged.json", fmt.Errorf("resource busy"))
	_, err := Retry(context.Background(), fastConfig(), func() (int, error) {
		calls++
		return 0, transient
	})
	if err != transient {
		t.Errorf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Retry(ctx, fastConfig(), func() (int, error) {
		calls++
		return 0, nil
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestRetry_CustomRetryIf(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = func(error) bool { return true }
	calls := 0
	_, _ = Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, fmt.Errorf("always")
	})
	if calls != cfg.MaxAttempts {
		t.Errorf("expected %d calls, got %d", cfg.MaxAttempts, calls)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 35 * time.Millisecond, BackoffFactor: 2}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 35 * time.Millisecond}
	for i, w := range want {
		if got := calculateBackoff(i+1, cfg); got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}

	cfg.Jitter = 0.5
	for range 20 {
		got := calculateBackoff(1, cfg)
		if got < 5*time.Millisecond || got > 15*time.Millisecond {
			t.Fatalf("jittered backoff %v out of range", got)
		}
	}
}
