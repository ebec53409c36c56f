package v1

import (
	"fmt"
	"time"

	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	"github.com/shopspring/decimal"
)

// Record is one sales transaction in the ledger.
// It separates the identifying fields, which feed the idempotency key,
// from the descriptive fields carried opaquely for downstream consumers.
type Record struct {
	// IdempotencyKey is derived from the identifying fields. Never generated randomly.
	IdempotencyKey string

	// --- Identifying fields ---

	// ProductName is the product key the watermark is tracked by. Required.
	ProductName string
	// Timestamp is the transaction instant, UTC, second precision. Required.
	Timestamp time.Time
	// CardCode is the counterparty code.
	CardCode    string
	Quantity    decimal.Decimal
	SalesAmount decimal.Decimal

	// --- Descriptive fields ---

	ProcessYm     string
	ProductNumber string
	SalesPerson   string
	CustName      string
	CustPlace     string

	// IngestedAt is set by the synchronizer when the record is written.
	IngestedAt time.Time
}

// Validate ensures the record satisfies the ledger invariants.
func (r *Record) Validate() error {
	if r.ProductName == "" {
		return fmt.Errorf("productName is required")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if r.Timestamp.Location() != time.UTC {
		return fmt.Errorf("timestamp must be UTC")
	}
	if r.Quantity.IsNegative() {
		return fmt.Errorf("quantity must be >= 0")
	}
	if r.SalesAmount.IsNegative() {
		return fmt.Errorf("salesAmount must be >= 0")
	}
	return nil
}

// Document is the stored and served shape of a record.
// Field names match the CSV header, timestamp is the canonical UTC string.
type Document struct {
	IdempotencyKey string  `json:"idempotencyKey" bson:"idempotencyKey"`
	ProductName    string  `json:"productName" bson:"productName"`
	Timestamp      string  `json:"timestamp" bson:"timestamp"`
	Quantity       float64 `json:"quantity" bson:"quantity"`
	SalesAmount    float64 `json:"salesAmount" bson:"salesAmount"`
	CardCode       string  `json:"cardCode" bson:"cardCode"`
	ProcessYm      string  `json:"processYm" bson:"processYm"`
	ProductNumber  string  `json:"productNumber" bson:"productNumber"`
	SalesPerson    string  `json:"salesPerson" bson:"salesPerson"`
	CustName       string  `json:"custName" bson:"custName"`
	CustPlace      string  `json:"custPlace" bson:"custPlace"`
}

// Document converts the record to its stored shape.
func (r *Record) Document() Document {
	return Document{
		IdempotencyKey: r.IdempotencyKey,
		ProductName:    r.ProductName,
		Timestamp:      timestamp.Format(r.Timestamp),
		Quantity:       r.Quantity.InexactFloat64(),
		SalesAmount:    r.SalesAmount.InexactFloat64(),
		CardCode:       r.CardCode,
		ProcessYm:      r.ProcessYm,
		ProductNumber:  r.ProductNumber,
		SalesPerson:    r.SalesPerson,
		CustName:       r.CustName,
		CustPlace:      r.CustPlace,
	}
}

// Record converts a stored document back into a record.
func (d Document) Record() (*Record, error) {
	ts, err := timestamp.ParseCanonical(d.Timestamp)
	if err != nil {
		return nil, err
	}
	return &Record{
		IdempotencyKey: d.IdempotencyKey,
		ProductName:    d.ProductName,
		Timestamp:      ts,
		CardCode:       d.CardCode,
		Quantity:       decimal.NewFromFloat(d.Quantity),
		SalesAmount:    decimal.NewFromFloat(d.SalesAmount),
		ProcessYm:      d.ProcessYm,
		ProductNumber:  d.ProductNumber,
		SalesPerson:    d.SalesPerson,
		CustName:       d.CustName,
		CustPlace:      d.CustPlace,
	}, nil
}
