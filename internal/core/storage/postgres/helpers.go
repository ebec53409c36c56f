package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
)

// marshalDocument renders the JSONB body stored for a record.
func marshalDocument(rec *v1.Record) ([]byte, error) {
	body, err := json.Marshal(rec.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return body, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans a row of queryRecordsInRange into a Record.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanRecordRow(row scanner) (*v1.Record, error) {
	var (
		key        string
		docJSON    []byte
		ingestedAt time.Time
		doc        v1.Document
	)

	if err := row.Scan(&key, &docJSON, &ingestedAt); err != nil {
		return nil, fmt.Errorf("failed to scan record row: %w", err)
	}

	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	rec, err := doc.Record()
	if err != nil {
		return nil, fmt.Errorf("stored record %s: %w", key, err)
	}
	rec.IdempotencyKey = key
	rec.IngestedAt = ingestedAt.UTC()
	return rec, nil
}
