package main

import (
	"fmt"

	"github.com/UnknownOlympus/itinera/internal/config"
	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the document store schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.MustLoad(envFile)
	logger := setupLogger(cfg.Env)

	opened, err := store.Open(ctx, storeConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer opened.Close()

	if err = opened.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Store %q is ready.\n", cfg.Store.Type)

	return nil
}
