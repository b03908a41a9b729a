package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastConfig(3), func(attempt int) (string, error) {
		calls++
		if attempt != calls {
			t.Errorf("attempt %d reported as %d", calls, attempt)
		}
		if attempt < 3 {
			return "", errors.New("temporary")
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("expected ok, got %q %v", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	var retried []int
	cfg := fastConfig(2)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	calls := 0
	_, err := Retry(context.Background(), cfg, func(int) (int, error) {
		calls++
		return 0, errors.New("still down")
	})
	if err == nil || err.Error() != "still down" {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 2 || len(retried) != 1 {
		t.Errorf("expected 2 calls and 1 retry, got %d and %v", calls, retried)
	}
}

func TestRetry_RetryIfStops(t *testing.T) {
	permanent := errors.New("permanent")
	cfg := fastConfig(5)
	cfg.RetryIf = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	_, err := Retry(context.Background(), cfg, func(int) (struct{}, error) {
		calls++
		return struct{}{}, permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("expected a single call, got %d (%v)", calls, err)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}

	calls := 0
	_, err := Retry(ctx, cfg, func(int) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("expected cancellation after one call, got %d (%v)", calls, err)
	}
}

type retryAfterErr struct{ d time.Duration }

func (e retryAfterErr) Error() string             { return "slow down" }
func (e retryAfterErr) RetryAfter() time.Duration { return e.d }

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2}

	tests := []struct {
		name    string
		attempt int
		err     error
		want    time.Duration
	}{
		{"first", 1, errors.New("x"), 100 * time.Millisecond},
		{"third", 3, errors.New("x"), 400 * time.Millisecond},
		{"capped", 10, errors.New("x"), time.Second},
		{"retry after", 1, retryAfterErr{300 * time.Millisecond}, 300 * time.Millisecond},
		{"retry after capped", 1, retryAfterErr{time.Minute}, time.Second},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Backoff(tc.attempt, cfg, tc.err); got != tc.want {
				t.Errorf("Backoff() = %v, want %v", got, tc.want)
			}
		})
	}
}
