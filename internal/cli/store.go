package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luboil-lab/sales-ledger/internal/core/config"
	"github.com/luboil-lab/sales-ledger/internal/core/storage"
	"github.com/luboil-lab/sales-ledger/internal/core/storage/memory"
	"github.com/luboil-lab/sales-ledger/internal/core/storage/mongo"
	"github.com/luboil-lab/sales-ledger/internal/core/storage/postgres"
	"github.com/luboil-lab/sales-ledger/internal/core/storage/sqlite"
	"github.com/luboil-lab/sales-ledger/internal/ingestion"
)

// openStore connects the backend named by cfg.Type.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	slog.Info("[CLI] Opening store", "type", cfg.Type)

	switch cfg.Type {
	case "postgres":
		return postgres.NewAdapter(postgres.Options{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			AutoMigrate:  cfg.AutoMigrate,
		})
	case "sqlite":
		return sqlite.Open(cfg.DSN)
	case "mongodb":
		return mongo.Open(ctx, cfg.DSN, cfg.Name, cfg.Collection)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func syncOptions(cfg config.IngestConfig) (ingestion.Options, error) {
	strategy, err := ingestion.ParseStrategy(cfg.WatermarkStrategy)
	if err != nil {
		return ingestion.Options{}, err
	}
	return ingestion.Options{
		Strategy:         strategy,
		EnforceWatermark: cfg.EnforceWatermark,
		ParseWorkers:     cfg.ParseWorkers,
	}, nil
}

func retryPolicy(cfg config.RetryConfig) (ingestion.RetryPolicy, error) {
	initial, max, err := cfg.Delays()
	if err != nil {
		return ingestion.RetryPolicy{}, err
	}
	return ingestion.RetryPolicy{
		MaxAttempts:       cfg.MaxAttempts,
		InitialDelay:      initial,
		MaxDelay:          max,
		BackoffMultiplier: cfg.Multiplier,
	}, nil
}
