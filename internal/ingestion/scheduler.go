package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler runs ingestion over one input directory on a fixed interval.
// Each tick is a full, independent run; the store watermarks carry the state.
type Scheduler struct {
	interval time.Duration
	syncer   *Synchronizer
	dir      string
	retry    RetryPolicy
}

// NewScheduler creates a scheduler for dir.
func NewScheduler(interval time.Duration, syncer *Synchronizer, dir string, retry RetryPolicy) *Scheduler {
	return &Scheduler{
		interval: interval,
		syncer:   syncer,
		dir:      dir,
		retry:    retry,
	}
}

// Start runs once immediately, then on every tick until ctx is cancelled.
// There is no final run on shutdown; an interrupted run is picked up by the next one.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting ingestion scheduler",
		"interval", s.interval,
		"input_dir", s.dir,
	)

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)", "input_dir", s.dir)
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := RunWithRetry(ctx, s.retry, func(ctx context.Context) (*RunSummary, error) {
		return s.syncer.TryRun(ctx, s.dir)
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		slog.Info("[Scheduler] Previous run still in flight, skipping tick", "input_dir", s.dir)
	case errors.Is(err, context.Canceled):
		slog.Info("[Scheduler] Run interrupted by context cancellation", "input_dir", s.dir)
	default:
		slog.Error("[Scheduler] Ingestion run failed", "error", err, "input_dir", s.dir)
	}
}
