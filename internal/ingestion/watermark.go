package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	"golang.org/x/sync/singleflight"
)

// Strategy selects how watermarks are read from the store.
// Both strategies yield identical admission outcomes.
type Strategy string

const (
	// StrategyBatched resolves every new product of a file in one query before its rows.
	StrategyBatched Strategy = "batched"
	// StrategyLazy resolves a product on first use.
	StrategyLazy Strategy = "lazy"
)

// ParseStrategy maps a config value to a Strategy. Empty means batched.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyBatched:
		return StrategyBatched, nil
	case StrategyLazy:
		return StrategyLazy, nil
	default:
		return "", fmt.Errorf("unknown watermark strategy %q", s)
	}
}

// WatermarkResolver memoizes per-product watermarks for the lifetime of one run.
// Once a product is resolved its watermark is frozen: records accepted later in
// the same run never raise it.
type WatermarkResolver struct {
	store    storage.RecordStore
	strategy Strategy

	mu      sync.Mutex
	frozen  map[string]time.Time
	queries int

	group singleflight.Group
}

// NewWatermarkResolver creates a resolver for a single run.
func NewWatermarkResolver(store storage.RecordStore, strategy Strategy) *WatermarkResolver {
	if strategy == "" {
		strategy = StrategyBatched
	}
	return &WatermarkResolver{
		store:    store,
		strategy: strategy,
		frozen:   make(map[string]time.Time),
	}
}

// Prefetch resolves all not yet resolved products in one store round trip.
// It is a no-op for the lazy strategy.
func (w *WatermarkResolver) Prefetch(ctx context.Context, products []string) error {
	if w.strategy != StrategyBatched {
		return nil
	}

	missing := w.unresolved(products)
	if len(missing) == 0 {
		return nil
	}

	found, err := w.store.FindMaxInstants(ctx, missing)
	if err != nil {
		return storeFailure("prefetch watermarks", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.queries++
	for _, name := range missing {
		if _, ok := w.frozen[name]; ok {
			continue
		}
		if t, ok := found[name]; ok {
			w.frozen[name] = t
		} else {
			w.frozen[name] = timestamp.Sentinel
		}
	}
	return nil
}

// Resolve returns the frozen watermark for product, reading the store on first use.
// Products with no stored records resolve to timestamp.Sentinel.
func (w *WatermarkResolver) Resolve(ctx context.Context, product string) (time.Time, error) {
	if t, ok := w.lookup(product); ok {
		return t, nil
	}

	v, err, _ := w.group.Do(product, func() (interface{}, error) {
		if t, ok := w.lookup(product); ok {
			return t, nil
		}

		t, ok, err := w.store.FindMaxInstant(ctx, product)
		if err != nil {
			return nil, storeFailure("resolve watermark", err)
		}
		if !ok {
			t = timestamp.Sentinel
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		w.queries++
		if existing, ok := w.frozen[product]; ok {
			return existing, nil
		}
		w.frozen[product] = t
		return t, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

// Queries reports how many store round trips the resolver made.
func (w *WatermarkResolver) Queries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queries
}

func (w *WatermarkResolver) lookup(product string) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.frozen[product]
	return t, ok
}

// unresolved returns the distinct products not yet resolved, sorted.
func (w *WatermarkResolver) unresolved(products []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		if p == "" {
			continue
		}
		if _, ok := w.frozen[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
