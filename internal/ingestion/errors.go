package ingestion

import (
	"errors"
	"fmt"

	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	"github.com/luboil-lab/sales-ledger/internal/source"
)

// Row-level errors. Each one turns the row into skip-malformed.
var (
	ErrMalformedTimestamp   = timestamp.ErrMalformed
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidNumber        = errors.New("invalid number")
)

// File-level errors. The file is skipped and the run continues.
var (
	ErrFileUnreadable   = source.ErrUnreadable
	ErrUnsupportedShape = source.ErrUnsupportedShape
)

// Run-level errors.
var (
	// ErrStoreUnavailable aborts the run. Upserts already committed stay.
	ErrStoreUnavailable = storage.ErrUnavailable
	// ErrRunInProgress is returned by TryRun while another run is in flight.
	ErrRunInProgress = errors.New("ingestion run already in progress")
)

// storeFailure wraps a store error so errors.Is(err, ErrStoreUnavailable) holds.
func storeFailure(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
