// Package idempotency derives content-addressed keys for ledger records.
package idempotency

import (
	"bytes"

	"github.com/google/uuid"
	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
)

// Domain separates record keys from any other UUIDv5 use of the namespace.
// Bump the version suffix if the canonical encoding ever changes.
const Domain = "sales-ledger/record/v1"

// Namespace is the UUIDv5 namespace for record keys. Must never change.
var Namespace = uuid.MustParse("8b0f6c1e-2f4a-5d8e-9c3b-7a1e4d2f6b90")

// Key returns the idempotency key for rec.
//
// The key is a UUIDv5 over the identifying fields joined with 0x00:
// product, canonical instant, counterparty code, quantity, amount.
// Decimals use their normalized text form, so "10" and "10.0" yield the same key.
func Key(rec *v1.Record) string {
	var buf bytes.Buffer
	for i, field := range []string{
		Domain,
		rec.ProductName,
		timestamp.Format(rec.Timestamp),
		rec.CardCode,
		rec.Quantity.String(),
		rec.SalesAmount.String(),
	} {
		if i > 0 {
			buf.WriteByte(0x00)
		}
		buf.WriteString(field)
	}
	return uuid.NewSHA1(Namespace, buf.Bytes()).String()
}
