package idempotency

import (
	"testing"
	"time"

	"github.com/google/uuid"
	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func baseRecord() *v1.Record {
	return &v1.Record{
		ProductName: "R32",
		Timestamp:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		CardCode:    "C001",
		Quantity:    decimal.NewFromInt(10),
		SalesAmount: decimal.RequireFromString("1500"),
	}
}

func TestKey_Deterministic(t *testing.T) {
	first := Key(baseRecord())
	second := Key(baseRecord())
	require.Equal(t, first, second)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(5), parsed.Version())
}

func TestKey_IgnoresDescriptiveFields(t *testing.T) {
	a := baseRecord()
	b := baseRecord()
	b.SalesPerson = "Lin"
	b.CustName = "ACME"
	b.ProcessYm = "202401"
	b.IngestedAt = time.Now()

	require.Equal(t, Key(a), Key(b))
}

func TestKey_NormalizesDecimals(t *testing.T) {
	a := baseRecord()
	b := baseRecord()
	b.Quantity = decimal.RequireFromString("10.0")
	b.SalesAmount = decimal.RequireFromString("1500.00")

	require.Equal(t, Key(a), Key(b))
}

func TestKey_SameInstantDifferentZone(t *testing.T) {
	a := baseRecord()
	b := baseRecord()
	b.Timestamp = a.Timestamp.In(time.FixedZone("CST", 8*3600))

	require.Equal(t, Key(a), Key(b))
}

func TestKey_ChangesWithIdentifyingFields(t *testing.T) {
	base := Key(baseRecord())

	tests := []struct {
		name   string
		mutate func(*v1.Record)
	}{
		{"product", func(r *v1.Record) { r.ProductName = "R46" }},
		{"instant", func(r *v1.Record) { r.Timestamp = r.Timestamp.Add(time.Second) }},
		{"card code", func(r *v1.Record) { r.CardCode = "C002" }},
		{"quantity", func(r *v1.Record) { r.Quantity = decimal.NewFromInt(11) }},
		{"amount", func(r *v1.Record) { r.SalesAmount = decimal.NewFromInt(1) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := baseRecord()
			tc.mutate(rec)
			require.NotEqual(t, base, Key(rec))
		})
	}
}

func TestKey_FieldBoundariesAreUnambiguous(t *testing.T) {
	a := baseRecord()
	a.ProductName = "R3"
	a.CardCode = "2C001"

	b := baseRecord()
	b.ProductName = "R32"
	b.CardCode = "C001"

	require.NotEqual(t, Key(a), Key(b))
}
