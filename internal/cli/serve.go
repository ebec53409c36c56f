package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luboil-lab/sales-ledger/internal/ingestion"
	"github.com/luboil-lab/sales-ledger/internal/projection"
	"github.com/luboil-lab/sales-ledger/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger API and run scheduled ingestion",
		Long: `Start the HTTP API: health, run trigger and ledger read endpoints.

When ingest.enabled is set, a scheduler also runs ingestion over
ingest.input_dir every ingest.interval.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	syncOpts, err := syncOptions(cfg.Ingest)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ingest options", err)
	}
	policy, err := retryPolicy(cfg.Retry)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid retry options", err)
	}
	interval, err := cfg.Ingest.IntervalDuration()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ingest interval", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer store.Close()

	syncer := ingestion.NewSynchronizer(store, syncOpts)
	ingestionSvc := ingestion.NewService(syncer, cfg.Ingest.InputDir)
	projectionSvc := projection.NewService(store)

	srv := server.New(server.Options{
		Addr:      cfg.Server.Addr(),
		Mode:      cfg.Server.Mode,
		Store:     store,
		StoreType: cfg.Database.Type,
		Runs:      syncer,
	})
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	if cfg.Ingest.Enabled {
		scheduler := ingestion.NewScheduler(interval, syncer, cfg.Ingest.InputDir, policy)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("[CLI] Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("[CLI] Ingestion scheduler disabled by config")
	}

	// blocks until ctx is cancelled
	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "server stopped with error", err)
	}

	slog.Info("[CLI] Shutdown complete")
	return nil
}
