package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/obstacle-data-etl/internal/adapter/http"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Refresh on a schedule and serve health and metrics",
		Long: `Run immediately, then every RUN_INTERVAL, until SIGINT or SIGTERM.

Endpoints on HTTP_ADDR:
  /healthz  liveness
  /readyz   ready once the first run has completed
  /status   last run report
  /metrics  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, a.pipeline, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start scheduler.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.pipeline.Run(ctx, cfg.RunInterval); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("run still in progress at shutdown deadline")
	}
	a.Close(logger)

	logger.Info("shutdown complete")
	return nil
}
