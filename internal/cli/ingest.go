package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luboil-lab/sales-ledger/internal/ingestion"
	"github.com/spf13/cobra"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Strategy   string
	ReportPath string
	Format     string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest [input-dir]",
		Short: "Run one incremental ingestion pass",
		Long: `Run one ingestion pass over every .csv and .json file in the input directory.

The input directory defaults to ingest.input_dir from the config. The run
summary is printed to stdout and, with --report, also written to a file.

Example:
  ledger ingest ./updatedData
  ledger ingest --strategy lazy --format json --report run.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runIngest(cmd.Context(), opts, dir, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "watermark strategy (batched|lazy), overrides config")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "write the run summary to this file, overrides config")
	cmd.Flags().StringVar(&opts.Format, "format", "", "summary format (yaml|json), overrides config")

	return cmd
}

func runIngest(ctx context.Context, opts *IngestOptions, dir string, out io.Writer) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if dir == "" {
		dir = cfg.Ingest.InputDir
	}
	if opts.Strategy != "" {
		cfg.Ingest.WatermarkStrategy = opts.Strategy
	}
	if opts.ReportPath != "" {
		cfg.Ingest.ReportPath = opts.ReportPath
	}
	if opts.Format != "" {
		cfg.Ingest.ReportFormat = opts.Format
	}

	syncOpts, err := syncOptions(cfg.Ingest)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ingest options", err)
	}
	format, err := ingestion.ParseFormat(cfg.Ingest.ReportFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ingest options", err)
	}
	policy, err := retryPolicy(cfg.Retry)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid retry options", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer store.Close()

	syncer := ingestion.NewSynchronizer(store, syncOpts)
	summary, runErr := ingestion.RunWithRetry(ctx, policy, func(ctx context.Context) (*ingestion.RunSummary, error) {
		return syncer.Run(ctx, dir)
	})

	if summary != nil {
		if err := ingestion.WriteReport(out, summary, format); err != nil {
			return WrapExitError(ExitCommandError, "failed to print summary", err)
		}
		if cfg.Ingest.ReportPath != "" {
			if err := writeReportFile(cfg.Ingest.ReportPath, summary, format); err != nil {
				return WrapExitError(ExitCommandError, "failed to write report", err)
			}
			slog.Info("[CLI] Run report written", "path", cfg.Ingest.ReportPath)
		}
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "ingestion run failed", runErr)
	}
	return nil
}

func writeReportFile(path string, summary *ingestion.RunSummary, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := ingestion.WriteReport(f, summary, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
