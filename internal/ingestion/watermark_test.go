package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	storagemocks "github.com/luboil-lab/sales-ledger/internal/mocks/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("")
	require.NoError(t, err)
	require.Equal(t, StrategyBatched, got)

	got, err = ParseStrategy("lazy")
	require.NoError(t, err)
	require.Equal(t, StrategyLazy, got)

	_, err = ParseStrategy("eager")
	require.Error(t, err)
}

func TestWatermarkResolver_BatchedPrefetchOncePerProduct(t *testing.T) {
	ctx := context.Background()
	r46 := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	store := storagemocks.NewRecordStore(t)
	store.EXPECT().
		FindMaxInstants(mock.Anything, []string{"R32", "R46"}).
		Return(map[string]time.Time{"R46": r46}, nil).
		Once()
	store.EXPECT().
		FindMaxInstants(mock.Anything, []string{"R68"}).
		Return(map[string]time.Time{}, nil).
		Once()

	w := NewWatermarkResolver(store, StrategyBatched)
	require.NoError(t, w.Prefetch(ctx, []string{"R46", "R32", "R46", ""}))
	// Second file: only the new product is queried.
	require.NoError(t, w.Prefetch(ctx, []string{"R32", "R68"}))
	// Nothing new: no round trip.
	require.NoError(t, w.Prefetch(ctx, []string{"R68"}))

	got, err := w.Resolve(ctx, "R46")
	require.NoError(t, err)
	require.Equal(t, r46, got)

	got, err = w.Resolve(ctx, "R32")
	require.NoError(t, err)
	require.Equal(t, timestamp.Sentinel, got)

	require.Equal(t, 2, w.Queries())
}

func TestWatermarkResolver_LazyMemoizes(t *testing.T) {
	ctx := context.Background()
	r32 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	store := storagemocks.NewRecordStore(t)
	store.EXPECT().FindMaxInstant(mock.Anything, "R32").Return(r32, true, nil).Once()
	store.EXPECT().FindMaxInstant(mock.Anything, "R99").Return(time.Time{}, false, nil).Once()

	w := NewWatermarkResolver(store, StrategyLazy)
	require.NoError(t, w.Prefetch(ctx, []string{"R32"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := w.Resolve(ctx, "R32")
			assert.NoError(t, err)
			assert.Equal(t, r32, got)
		}()
	}
	wg.Wait()

	got, err := w.Resolve(ctx, "R99")
	require.NoError(t, err)
	require.Equal(t, timestamp.Sentinel, got)

	require.Equal(t, 2, w.Queries())
}

func TestWatermarkResolver_StoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	store := storagemocks.NewRecordStore(t)
	store.EXPECT().FindMaxInstants(mock.Anything, []string{"R32"}).Return(nil, boom).Once()
	store.EXPECT().FindMaxInstant(mock.Anything, "R32").Return(time.Time{}, false, boom).Once()

	w := NewWatermarkResolver(store, StrategyBatched)

	err := w.Prefetch(ctx, []string{"R32"})
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.ErrorIs(t, err, boom)

	_, err = w.Resolve(ctx, "R32")
	require.ErrorIs(t, err, ErrStoreUnavailable)
}
