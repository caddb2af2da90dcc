package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "itinera",
	Short: "Itinera – trip itinerary service",
	Long: `itinera keeps the places of a trip, groups them by the month they are
planned for and tracks a small checklist per place. Places are found through
Google Places or OpenStreetMap Nominatim and stored in PostgreSQL or MongoDB.`,
	SilenceUsage: true,
}

// Execute runs the command line until it finishes or an interrupt arrives.
func Execute() {
	// Canceled on SIGINT/SIGTERM so every command shuts down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
}
