package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/UnknownOlympus/itinera/internal/httpapi"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long open requests may finish after a shutdown signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the itinerary API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, a.log, a.registry, a.store, a.cfg.HealthPort)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler: httpapi.NewHandler(a.service, httpapi.Options{
			AllowedOrigins:  a.cfg.HTTP.AllowedOrigins,
			ClientRateLimit: a.cfg.HTTP.ClientRateLimit,
			Logger:          a.log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoContext(ctx, "Starting itinerary API", "port", a.cfg.HTTPPort)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	select {
	case err = <-errCh:
		return fmt.Errorf("itinerary API failed: %w", err)
	case <-ctx.Done():
	}

	a.log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		a.log.ErrorContext(shutdownCtx, "Failed to shut down itinerary API", "error", err)
	}

	a.log.InfoContext(shutdownCtx, "Application stopped gracefully.")

	return nil
}
