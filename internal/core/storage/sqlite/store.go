// Package sqlite stores the ledger in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store implements storage.Store on SQLite with WAL mode.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// Applies pragmas and the schema; safe to call on an existing file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) FindMaxInstant(ctx context.Context, productName string) (time.Time, bool, error) {
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(timestamp) FROM sales_records WHERE product_name = ?`,
		productName,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}

	t, err := timestamp.ParseCanonical(latest.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark: %w", err)
	}
	return t, true, nil
}

// maxInstantsChunk keeps each IN list well below SQLite's host parameter limit.
const maxInstantsChunk = 500

func (s *Store) FindMaxInstants(ctx context.Context, productNames []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(productNames))
	for start := 0; start < len(productNames); start += maxInstantsChunk {
		end := min(start+maxInstantsChunk, len(productNames))
		if err := s.queryMaxInstants(ctx, productNames[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) queryMaxInstants(ctx context.Context, names []string, out map[string]time.Time) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_name, MAX(timestamp)
		FROM sales_records
		WHERE product_name IN (`+placeholders+`)
		GROUP BY product_name
	`, args...)
	if err != nil {
		return fmt.Errorf("query watermarks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, latest string
		if err := rows.Scan(&name, &latest); err != nil {
			return fmt.Errorf("scan watermark: %w", err)
		}
		t, err := timestamp.ParseCanonical(latest)
		if err != nil {
			return fmt.Errorf("scan watermark: %w", err)
		}
		out[name] = t
	}
	return rows.Err()
}

// Upsert uses ON CONFLICT DO NOTHING on the unique idempotency key.
// Zero affected rows means the key already existed.
func (s *Store) Upsert(ctx context.Context, rec *v1.Record) (storage.UpsertResult, error) {
	body, err := json.Marshal(rec.Document())
	if err != nil {
		return 0, fmt.Errorf("upsert record: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_records
		(idempotency_key, product_name, timestamp, document, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(idempotency_key) DO NOTHING
	`,
		rec.IdempotencyKey,
		rec.ProductName,
		timestamp.Format(rec.Timestamp),
		string(body),
		rec.IngestedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("upsert record: %w", err)
	}
	if n == 0 {
		return storage.AlreadyExists, nil
	}
	return storage.Inserted, nil
}

func (s *Store) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]*v1.Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idempotency_key, document, ingested_at
		FROM sales_records
		WHERE product_name = ?
		  AND timestamp >= ?
		  AND timestamp < ?
		ORDER BY timestamp ASC, ingest_seq ASC
		LIMIT ?
	`, q.ProductName, timestamp.Format(q.From), timestamp.Format(q.To), limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*v1.Record
	for rows.Next() {
		var key, body, ingestedAt string
		if err := rows.Scan(&key, &body, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		var doc v1.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", key, err)
		}
		rec, err := doc.Record()
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", key, err)
		}
		rec.IdempotencyKey = key
		if t, err := time.Parse(time.RFC3339Nano, ingestedAt); err == nil {
			rec.IngestedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
