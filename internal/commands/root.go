// Package commands wires the CLI surface onto the ingestion and detection
// core.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/store"
	"github.com/ledgerlens/ledgerlens/pkg/config"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerlens",
		Short: "Offline bank-statement ingestion and spending insights",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newRecurringCommand())
	rootCmd.AddCommand(newAnomaliesCommand())
	rootCmd.AddCommand(newForecastCommand())
	rootCmd.AddCommand(newRecategorizeCommand())
	rootCmd.AddCommand(newTagsCommand())

	return rootCmd
}

// app bundles the dependencies every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
}

func newApp() (*app, error) {
	cfg := config.Load()

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: st}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}
