package projection

import (
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/shopspring/decimal"
)

// RecordsQueryRequest selects records of one product in [From, To).
type RecordsQueryRequest struct {
	ProductName string
	From        time.Time
	To          time.Time
	Limit       int
}

// RecordsQueryResponse is the body of GET /v1/records.
type RecordsQueryResponse struct {
	ProductName string        `json:"productName"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	Count       int           `json:"count"`
	Records     []v1.Document `json:"records"`
}

// WatermarkResponse is the body of GET /v1/products/:product/watermark.
type WatermarkResponse struct {
	ProductName string `json:"productName"`
	Watermark   string `json:"watermark"`
	// HasRecords is false when Watermark is the sentinel.
	HasRecords bool `json:"hasRecords"`
}

// RollupRequest sums a product's records per calendar bucket.
type RollupRequest struct {
	ProductName string
	From        time.Time
	To          time.Time
	Granularity string // total, day or month; default total
}

// RollupValue is one bucket of a rollup.
type RollupValue struct {
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Quantity    decimal.Decimal `json:"quantity"`
	SalesAmount decimal.Decimal `json:"sales_amount"`
	RecordCount int64           `json:"record_count"`
}

// RollupResponse is the body of GET /v1/products/:product/rollup.
type RollupResponse struct {
	ProductName string        `json:"productName"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Granularity string        `json:"granularity"`
	Values      []RollupValue `json:"values"`
}
