package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/luboil-lab/sales-ledger/internal/core/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the ledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Sales ledger synchronizer",
		Long: `Incrementally ingest sales transaction exports into the ledger store.

Each run admits only rows newer than the latest stored timestamp of their
product, and never writes the same transaction twice.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "ledger.yaml", "path to configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig reads the config file (when present) and installs the default logger.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	setupLogger(cfg.Log.Level, opts.Verbose)
	if path == "" {
		slog.Info("[CLI] Config file not found, using defaults and environment", "path", opts.ConfigPath)
	}
	return cfg, nil
}

func setupLogger(level string, verbose bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
