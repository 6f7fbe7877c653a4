package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/openapi-toolproxy/internal/app"
	"github.com/bobmcallan/openapi-toolproxy/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Compile configured sources and serve the tool API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	cmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	logger.Info().
		Int("port", cfg.Server.Port).
		Str("host", cfg.Server.Host).
		Int("sources", len(cfg.Sources)).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A server with no tools still answers health checks, so a failed
	// initial load is not fatal.
	if err := application.Reload(ctx); err != nil {
		if !errors.Is(err, app.ErrAllSourcesFailed) {
			return err
		}
		logger.Warn().Str("error", err.Error()).Msg("initial load produced no tools")
	}

	srv := server.New(application)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Str("error", err.Error()).Msg("server shutdown failed")
	}

	logger.Info().Msg("server stopped")
	return nil
}
