package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds whole-run retries with exponential backoff.
type RetryPolicy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy returns three attempts starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backOff builds a deterministic schedule: no jitter, no elapsed-time cap.
// The attempt bound is applied by RunWithRetry.
func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.Multiplier = math.Max(p.BackoffMultiplier, 1)
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// RunWithRetry re-runs fn while it fails with ErrStoreUnavailable.
// Re-running is safe because every write is an idempotent upsert.
// Any other error, or an exhausted policy, returns the last summary and error.
func RunWithRetry(ctx context.Context, p RetryPolicy, fn func(context.Context) (*RunSummary, error)) (*RunSummary, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var (
		summary *RunSummary
		attempt int
	)
	operation := func() error {
		attempt++
		var err error
		summary, err = fn(ctx)
		if err != nil && !errors.Is(err, ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("[Ingest] Store unavailable, retrying run",
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", wait,
			"error", err,
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)), ctx)
	err := backoff.RetryNotify(operation, policy, notify)
	return summary, err
}
