package ingestion

import (
	"fmt"
	"strings"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/idempotency"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	"github.com/shopspring/decimal"
)

// Outcome is the terminal state of one row.
type Outcome string

const (
	OutcomeAccept        Outcome = "accept"
	OutcomeSkipStale     Outcome = "skip-stale"
	OutcomeSkipMalformed Outcome = "skip-malformed"
	OutcomeSkipDuplicate Outcome = "skip-duplicate"
)

// Input field names.
const (
	fieldProductName   = "productName"
	fieldTimestamp     = "timestamp"
	fieldCardCode      = "cardCode"
	fieldQuantity      = "quantity"
	fieldSalesAmount   = "salesAmount"
	fieldProcessYm     = "processYm"
	fieldProductNumber = "productNumber"
	fieldSalesPerson   = "salesPerson"
	fieldCustName      = "custName"
	fieldCustPlace     = "custPlace"
)

// DecodeRecord validates raw fields and builds a keyed record.
// Errors wrap ErrMissingRequiredField, ErrMalformedTimestamp or ErrInvalidNumber.
func DecodeRecord(fields map[string]string) (*v1.Record, error) {
	productName := field(fields, fieldProductName)
	if productName == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, fieldProductName)
	}

	rawTs := field(fields, fieldTimestamp)
	if rawTs == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, fieldTimestamp)
	}
	ts, err := timestamp.Normalize(rawTs)
	if err != nil {
		return nil, err
	}

	quantity, err := parseAmount(fields, fieldQuantity)
	if err != nil {
		return nil, err
	}
	salesAmount, err := parseAmount(fields, fieldSalesAmount)
	if err != nil {
		return nil, err
	}

	rec := &v1.Record{
		ProductName:   productName,
		Timestamp:     ts,
		CardCode:      field(fields, fieldCardCode),
		Quantity:      quantity,
		SalesAmount:   salesAmount,
		ProcessYm:     field(fields, fieldProcessYm),
		ProductNumber: field(fields, fieldProductNumber),
		SalesPerson:   field(fields, fieldSalesPerson),
		CustName:      field(fields, fieldCustName),
		CustPlace:     field(fields, fieldCustPlace),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	rec.IdempotencyKey = idempotency.Key(rec)
	return rec, nil
}

// field returns a trimmed value, so padding never changes the idempotency key.
func field(fields map[string]string, name string) string {
	return strings.TrimSpace(fields[name])
}

// parseAmount reads a non-negative decimal. An empty value counts as zero.
func parseAmount(fields map[string]string, name string) (decimal.Decimal, error) {
	raw := field(fields, name)
	if raw == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrInvalidNumber, name, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s %q is negative", ErrInvalidNumber, name, raw)
	}
	return d, nil
}

// Admit compares an instant against the product watermark.
// Only instants strictly after the watermark are accepted; equality is stale.
func Admit(instant, watermark time.Time) Outcome {
	if instant.After(watermark) {
		return OutcomeAccept
	}
	return OutcomeSkipStale
}
