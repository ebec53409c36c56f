package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema to the configured store",
		Long: `Apply pending migrations (postgres), the embedded schema (sqlite) or the
indexes (mongodb) to the configured store. The memory store needs nothing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rootOpts, cmd.OutOrStdout())
		},
	}
}

func runMigrate(ctx context.Context, opts *RootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening a store applies its schema; force it for postgres.
	cfg.Database.AutoMigrate = true
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to migrate store", err)
	}
	if err := store.Close(); err != nil {
		slog.Warn("[CLI] Failed to close store after migration", "error", err)
	}

	fmt.Fprintf(out, "schema up to date (%s)\n", cfg.Database.Type)
	return nil
}
