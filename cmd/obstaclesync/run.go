package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/spf13/cobra"
)

const pushJob = "obstacle_etl"

func newRunCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Refresh every dataset once and exit",
		Long: `Refresh every dataset once and exit.

A dataset whose download or extraction fails keeps its previous snapshot.
Metadata is always written. With --strict the command exits non-zero when
any stage failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any stage fails")
	return cmd
}

func runOnce(parent context.Context, strict bool) error {
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
	defer a.Close(logger)

	report := a.pipeline.RunOnce(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, pushJob); err != nil {
			logger.Error("push metrics failed", "error", err)
		}
	}

	if strict && !report.OK() {
		return errRunFailed
	}
	return nil
}
