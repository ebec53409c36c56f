// Package mongo stores the ledger as documents in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/luboil-lab/sales-ledger/internal/api/v1"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/timestamp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document is the persisted shape: the record document plus ingest metadata.
type document struct {
	v1.Document `bson:",inline"`
	IngestedAt  time.Time `bson:"ingestedAt"`
}

// Store implements storage.Store on a single MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

// Open connects to MongoDB and ensures the collection indexes exist.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, indexModels())
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_idempotency_key"),
		},
		{
			Keys:    bson.D{{Key: "productName", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("product_timestamp"),
		},
	}
}

// FindMaxInstant relies on the canonical timestamp string sorting chronologically.
func (s *Store) FindMaxInstant(ctx context.Context, productName string) (time.Time, bool, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.D{{Key: "timestamp", Value: 1}})

	var latest struct {
		Timestamp string `bson:"timestamp"`
	}
	err := s.coll.FindOne(ctx, bson.D{{Key: "productName", Value: productName}}, opts).Decode(&latest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark: %w", err)
	}

	t, err := timestamp.ParseCanonical(latest.Timestamp)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark: %w", err)
	}
	return t, true, nil
}

func (s *Store) FindMaxInstants(ctx context.Context, productNames []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(productNames))
	if len(productNames) == 0 {
		return out, nil
	}

	cur, err := s.coll.Aggregate(ctx, maxInstantsPipeline(productNames))
	if err != nil {
		return nil, fmt.Errorf("query watermarks: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ProductName string `bson:"_id"`
			Latest      string `bson:"latest"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode watermark: %w", err)
		}
		t, err := timestamp.ParseCanonical(row.Latest)
		if err != nil {
			return nil, fmt.Errorf("decode watermark: %w", err)
		}
		out[row.ProductName] = t
	}
	return out, cur.Err()
}

func maxInstantsPipeline(productNames []string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "productName", Value: bson.D{{Key: "$in", Value: productNames}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$productName"},
			{Key: "latest", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
		}}},
	}
}

// Upsert writes with $setOnInsert so an existing document is never modified.
// A duplicate key error from a concurrent writer also counts as AlreadyExists.
func (s *Store) Upsert(ctx context.Context, rec *v1.Record) (storage.UpsertResult, error) {
	filter, update := upsertOps(rec)

	res, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return storage.AlreadyExists, nil
	}
	if err != nil {
		return 0, fmt.Errorf("upsert record: %w", err)
	}
	if res.UpsertedCount == 0 {
		return storage.AlreadyExists, nil
	}
	return storage.Inserted, nil
}

func upsertOps(rec *v1.Record) (filter, update bson.D) {
	doc := document{Document: rec.Document(), IngestedAt: rec.IngestedAt.UTC()}
	filter = bson.D{{Key: "idempotencyKey", Value: rec.IdempotencyKey}}
	update = bson.D{{Key: "$setOnInsert", Value: doc}}
	return filter, update
}

func (s *Store) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]*v1.Record, error) {
	filter, opts := rangeQuery(q)

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer cur.Close(ctx)

	var records []*v1.Record
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		rec, err := doc.Record()
		if err != nil {
			return nil, fmt.Errorf("decode record %s: %w", doc.IdempotencyKey, err)
		}
		rec.IngestedAt = doc.IngestedAt.UTC()
		records = append(records, rec)
	}
	return records, cur.Err()
}

func rangeQuery(q storage.RecordQuery) (bson.D, *options.FindOptions) {
	filter := bson.D{
		{Key: "productName", Value: q.ProductName},
		{Key: "timestamp", Value: bson.D{
			{Key: "$gte", Value: timestamp.Format(q.From)},
			{Key: "$lt", Value: timestamp.Format(q.To)},
		}},
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return filter, opts
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
