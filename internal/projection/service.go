// Package projection serves the read side of the ledger to downstream consumers.
package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
)

const (
	defaultLimit = 1000
	maxLimit     = 10000
	maxBuckets   = 5000
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid ledger query")

	// openEnd is the default upper bound when a query names no end.
	openEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Reader is the store surface the projection needs.
type Reader interface {
	storage.RecordReader
	FindMaxInstant(ctx context.Context, productName string) (time.Time, bool, error)
}

// Service implements the ledger query layer.
type Service struct {
	reader Reader
}

// NewService creates a new projection service.
func NewService(reader Reader) *Service {
	if reader == nil {
		panic("projection: reader must not be nil")
	}
	return &Service{reader: reader}
}

// QueryRecords returns a product's records ordered by instant.
func (s *Service) QueryRecords(ctx context.Context, req RecordsQueryRequest) (*RecordsQueryResponse, error) {
	req, err := normalizeRecordsQuery(req)
	if err != nil {
		return nil, err
	}

	records, err := s.reader.QueryRecords(ctx, storage.RecordQuery{
		ProductName: req.ProductName,
		From:        req.From,
		To:          req.To,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	docs := make([]v1.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, rec.Document())
	}

	return &RecordsQueryResponse{
		ProductName: req.ProductName,
		From:        timestamp.Format(req.From),
		To:          timestamp.Format(req.To),
		Count:       len(docs),
		Records:     docs,
	}, nil
}

func normalizeRecordsQuery(req RecordsQueryRequest) (RecordsQueryRequest, error) {
	if req.ProductName == "" {
		return req, invalidQueryf("productName is required")
	}
	if req.From.IsZero() {
		req.From = timestamp.Sentinel
	}
	if req.To.IsZero() {
		req.To = openEnd
	}
	if !req.To.After(req.From) {
		return req, invalidQueryf("to must be after from")
	}

	switch {
	case req.Limit < 0:
		return req, invalidQueryf("limit must be positive")
	case req.Limit == 0:
		req.Limit = defaultLimit
	case req.Limit > maxLimit:
		req.Limit = maxLimit
	}
	return req, nil
}

// Watermark reports the latest stored instant of a product.
func (s *Service) Watermark(ctx context.Context, product string) (*WatermarkResponse, error) {
	if product == "" {
		return nil, invalidQueryf("product is required")
	}

	latest, ok, err := s.reader.FindMaxInstant(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("query watermark: %w", err)
	}
	if !ok {
		latest = timestamp.Sentinel
	}

	return &WatermarkResponse{
		ProductName: product,
		Watermark:   timestamp.Format(latest),
		HasRecords:  ok,
	}, nil
}

// Rollup sums quantity and sales amount of a product per bucket.
func (s *Service) Rollup(ctx context.Context, req RollupRequest) (*RollupResponse, error) {
	req, err := normalizeRollup(req)
	if err != nil {
		return nil, err
	}

	records, err := s.reader.QueryRecords(ctx, storage.RecordQuery{
		ProductName: req.ProductName,
		From:        req.From,
		To:          req.To,
	})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	return &RollupResponse{
		ProductName: req.ProductName,
		From:        req.From,
		To:          req.To,
		Granularity: req.Granularity,
		Values:      rollupForGranularity(records, req.Granularity, req.From, req.To),
	}, nil
}

func normalizeRollup(req RollupRequest) (RollupRequest, error) {
	if req.Granularity == "" {
		req.Granularity = granularityTotal
	}

	if req.ProductName == "" {
		return req, invalidQueryf("product is required")
	}
	if req.From.IsZero() || req.To.IsZero() {
		return req, invalidQueryf("from and to are required")
	}
	if !req.To.After(req.From) {
		return req, invalidQueryf("to must be after from")
	}

	switch req.Granularity {
	case granularityTotal:
	case granularityDay:
		if req.To.Sub(req.From) > maxBuckets*24*time.Hour {
			return req, invalidQueryf("range too large for day granularity")
		}
	case granularityMonth:
	default:
		return req, invalidQueryf("invalid granularity: %s (must be total, day, or month)", req.Granularity)
	}

	return req, nil
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
