// Package ingestion synchronizes input files into the sales ledger.
//
// Each row passes Read, Validate, Normalize, Resolve-Watermark and Decide, and
// ends as accept, skip-stale, skip-malformed or skip-duplicate. Re-running over
// the same files is safe: admitted rows are written through the store's atomic
// upsert keyed by a content-derived idempotency key.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/source"
)

// Options configures a Synchronizer.
type Options struct {
	Strategy Strategy
	// EnforceWatermark enables stale filtering. When false, admission relies on
	// the idempotency key alone and replays are counted as duplicates.
	EnforceWatermark bool
	// ParseWorkers bounds how many files are parsed in parallel.
	ParseWorkers int
}

// DefaultOptions returns batched watermarks with stale filtering on.
func DefaultOptions() Options {
	return Options{
		Strategy:         StrategyBatched,
		EnforceWatermark: true,
		ParseWorkers:     4,
	}
}

// Synchronizer runs incremental ingestion against a RecordStore.
type Synchronizer struct {
	store   storage.RecordStore
	opts    Options
	now     func() time.Time
	running atomic.Bool
}

// NewSynchronizer creates a synchronizer. The store must not be nil.
func NewSynchronizer(store storage.RecordStore, opts Options) *Synchronizer {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyBatched
	}
	if opts.ParseWorkers <= 0 {
		opts.ParseWorkers = 1
	}
	return &Synchronizer{
		store: store,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// TryRun is Run guarded against overlapping runs in this process.
func (s *Synchronizer) TryRun(ctx context.Context, dir string) (*RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.Run(ctx, dir)
}

// Running reports whether a TryRun is in flight.
func (s *Synchronizer) Running() bool {
	return s.running.Load()
}

// Run ingests every .csv and .json file under dir in name order.
func (s *Synchronizer) Run(ctx context.Context, dir string) (*RunSummary, error) {
	paths, err := source.Discover(dir)
	if err != nil {
		return nil, err
	}
	return s.RunFiles(ctx, paths)
}

// RunFiles ingests the given files in order.
//
// On ErrStoreUnavailable or cancellation the run stops and the partial summary
// is returned together with the error. Upserts already committed are kept.
func (s *Synchronizer) RunFiles(ctx context.Context, paths []string) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: s.now(),
		Files:     make([]FileSummary, 0, len(paths)),
	}

	slog.Info("[Ingest] Starting run",
		"run_id", summary.RunID,
		"files", len(paths),
		"strategy", s.opts.Strategy,
		"enforce_watermark", s.opts.EnforceWatermark,
	)

	files, err := source.LoadAll(ctx, paths, s.opts.ParseWorkers)
	if err != nil {
		return s.finish(summary, err)
	}

	resolver := NewWatermarkResolver(s.store, s.opts.Strategy)
	for _, f := range files {
		fs, err := s.processFile(ctx, resolver, f)
		summary.addFile(fs)
		if err != nil {
			return s.finish(summary, err)
		}
	}

	slog.Debug("[Ingest] Watermark queries", "run_id", summary.RunID, "queries", resolver.Queries())
	return s.finish(summary, nil)
}

func (s *Synchronizer) finish(summary *RunSummary, err error) (*RunSummary, error) {
	summary.FinishedAt = s.now()
	if err != nil {
		summary.Error = err.Error()
		slog.Error("[Ingest] Run aborted",
			"run_id", summary.RunID,
			"error", err,
			"accepted", summary.Accepted,
			"files_done", len(summary.Files),
		)
		return summary, err
	}

	slog.Info("[Ingest] Run complete",
		"run_id", summary.RunID,
		"accepted", summary.Accepted,
		"skipped_stale", summary.SkippedStale,
		"skipped_malformed", summary.SkippedMalformed,
		"skipped_duplicate", summary.SkippedDuplicate,
		"duration", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, nil
}

func (s *Synchronizer) processFile(ctx context.Context, resolver *WatermarkResolver, f *source.File) (FileSummary, error) {
	fs := FileSummary{Path: f.Path, Status: FileProcessed}

	switch {
	case errors.Is(f.Err, ErrUnsupportedShape):
		slog.Warn("[Ingest] Skipping file with unsupported shape", "file", f.Path, "error", f.Err)
		fs.Status = FileSkippedUnsupported
		fs.Error = f.Err.Error()
		return fs, nil
	case f.Err != nil && !f.Partial():
		slog.Warn("[Ingest] Skipping unreadable file", "file", f.Path, "error", f.Err)
		fs.Status = FileSkippedUnreadable
		fs.Error = f.Err.Error()
		return fs, nil
	}

	if s.opts.EnforceWatermark {
		if err := resolver.Prefetch(ctx, productNames(f.Rows)); err != nil {
			fs.Status = FileAborted
			fs.Error = err.Error()
			return fs, err
		}
	}

	for _, row := range f.Rows {
		if err := ctx.Err(); err != nil {
			fs.Status = FileAborted
			fs.Error = err.Error()
			return fs, err
		}

		outcome, err := s.processRow(ctx, resolver, f.Path, row)
		if err != nil {
			fs.Status = FileAborted
			fs.Error = err.Error()
			return fs, err
		}
		fs.Counts.add(outcome)
	}

	if f.Partial() {
		slog.Warn("[Ingest] File read stopped early, rows read so far were ingested",
			"file", f.Path,
			"rows", len(f.Rows),
			"error", f.Err,
		)
		fs.Status = FilePartial
		fs.Error = f.Err.Error()
	}

	slog.Info("[Ingest] File done",
		"file", f.Path,
		"status", fs.Status,
		"accepted", fs.Accepted,
		"skipped", fs.Rows()-fs.Accepted,
	)
	return fs, nil
}

// processRow returns the terminal outcome of one row.
// Only store failures and cancellation are returned as errors.
func (s *Synchronizer) processRow(ctx context.Context, resolver *WatermarkResolver, path string, row source.Row) (Outcome, error) {
	if row.Err != nil {
		slog.Debug("[Ingest] Skip malformed row", "file", path, "line", row.Line, "error", row.Err)
		return OutcomeSkipMalformed, nil
	}

	rec, err := DecodeRecord(row.Fields)
	if err != nil {
		slog.Debug("[Ingest] Skip malformed row", "file", path, "line", row.Line, "error", err)
		return OutcomeSkipMalformed, nil
	}

	if s.opts.EnforceWatermark {
		watermark, err := resolver.Resolve(ctx, rec.ProductName)
		if err != nil {
			return "", err
		}
		if Admit(rec.Timestamp, watermark) == OutcomeSkipStale {
			slog.Debug("[Ingest] Skip stale row",
				"file", path,
				"line", row.Line,
				"product", rec.ProductName,
				"timestamp", rec.Timestamp,
				"watermark", watermark,
			)
			return OutcomeSkipStale, nil
		}
	}

	rec.IngestedAt = s.now()
	res, err := s.store.Upsert(ctx, rec)
	if err != nil {
		return "", storeFailure("upsert record", err)
	}

	if res == storage.AlreadyExists {
		slog.Debug("[Ingest] Skip duplicate row",
			"file", path,
			"line", row.Line,
			"product", rec.ProductName,
			"idempotency_key", rec.IdempotencyKey,
		)
		return OutcomeSkipDuplicate, nil
	}
	return OutcomeAccept, nil
}

// productNames lists the product keys of well-formed rows, in first-seen order.
func productNames(rows []source.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		if row.Err != nil {
			continue
		}
		name := strings.TrimSpace(row.Fields[fieldProductName])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
