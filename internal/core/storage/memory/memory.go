// Package memory is an in-process implementation of storage.Store.
// Useful for testing and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
)

// Store keeps records keyed by idempotency key.
type Store struct {
	mu      sync.RWMutex
	records map[string]*v1.Record
	latest  map[string]time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]*v1.Record),
		latest:  make(map[string]time.Time),
	}
}

func (s *Store) FindMaxInstant(ctx context.Context, productName string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.latest[productName]
	return t, ok, nil
}

func (s *Store) FindMaxInstants(ctx context.Context, productNames []string) (map[string]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]time.Time, len(productNames))
	for _, name := range productNames {
		if t, ok := s.latest[name]; ok {
			out[name] = t
		}
	}
	return out, nil
}

// Upsert holds the write lock for the check and the insert, which makes it atomic.
func (s *Store) Upsert(ctx context.Context, rec *v1.Record) (storage.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.IdempotencyKey]; exists {
		return storage.AlreadyExists, nil
	}

	// Store a copy to prevent external modification
	copy := *rec
	s.records[rec.IdempotencyKey] = &copy
	if cur, ok := s.latest[rec.ProductName]; !ok || rec.Timestamp.After(cur) {
		s.latest[rec.ProductName] = rec.Timestamp
	}
	return storage.Inserted, nil
}

func (s *Store) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]*v1.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*v1.Record
	for _, rec := range s.records {
		if rec.ProductName != q.ProductName {
			continue
		}
		if rec.Timestamp.Before(q.From) || !rec.Timestamp.Before(q.To) {
			continue
		}
		copy := *rec
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].IdempotencyKey < result[j].IdempotencyKey
		}
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
