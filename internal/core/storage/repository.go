package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
)

// ErrUnavailable marks a failed store round trip. It aborts an ingestion run.
var ErrUnavailable = errors.New("store unavailable")

// UpsertResult reports what an upsert did.
type UpsertResult int

const (
	// Inserted means no record with the idempotency key existed and one was written.
	Inserted UpsertResult = iota + 1
	// AlreadyExists means a record with the key was already stored and left untouched.
	AlreadyExists
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// RecordStore is the contract the ingestion synchronizer consumes.
type RecordStore interface {
	// FindMaxInstant returns the latest stored instant for a product.
	// ok is false when the product has no records.
	FindMaxInstant(ctx context.Context, productName string) (instant time.Time, ok bool, err error)

	// FindMaxInstants resolves many products in one round trip.
	// Products without records are absent from the result.
	FindMaxInstants(ctx context.Context, productNames []string) (map[string]time.Time, error)

	// Upsert inserts rec unless a record with rec.IdempotencyKey exists.
	// Must be a single atomic operation against the store.
	Upsert(ctx context.Context, rec *v1.Record) (UpsertResult, error)
}

// RecordQuery selects records of one product in the half-open range [From, To).
// Limit <= 0 means no limit.
type RecordQuery struct {
	ProductName string
	From        time.Time
	To          time.Time
	Limit       int
}

// RecordReader is the read path used by downstream consumers.
type RecordReader interface {
	// QueryRecords returns matching records ordered by instant ascending.
	QueryRecords(ctx context.Context, q RecordQuery) ([]*v1.Record, error)
}

// Store is a full backend: write contract, read path and lifecycle.
type Store interface {
	RecordStore
	RecordReader
	Ping(ctx context.Context) error
	Close() error
}
