package postgres

// SQL queries for the sales_records ledger table

const (
	// queryUpsertRecord inserts a record keyed by its idempotency key.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for an existing key,
	// so concurrent importers inserting the same key see exactly one insert.
	queryUpsertRecord = `
		INSERT INTO sales_records (
			idempotency_key, product_name, occurred_at, document, ingested_at
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING ingest_seq
	`

	// queryMaxInstant returns NULL when the product has no records.
	queryMaxInstant = `
		SELECT MAX(occurred_at)
		FROM sales_records
		WHERE product_name = $1
	`

	// queryMaxInstantsBatch resolves watermarks for a set of products in one round trip.
	queryMaxInstantsBatch = `
		SELECT product_name, MAX(occurred_at)
		FROM sales_records
		WHERE product_name = ANY($1)
		GROUP BY product_name
	`

	// queryRecordsInRange serves the downstream read path.
	queryRecordsInRange = `
		SELECT idempotency_key, document, ingested_at
		FROM sales_records
		WHERE product_name = $1
		  AND occurred_at >= $2
		  AND occurred_at < $3
		ORDER BY occurred_at ASC, ingest_seq ASC
		LIMIT $4
	`
)
