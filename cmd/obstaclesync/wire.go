package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/obstacle-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/notam"
	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/postgres"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
)

// app is a fully wired pipeline plus the resources it holds.
type app struct {
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func (a *app) Close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Error("close error", "error", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	a := &app{}

	layouts, err := config.LoadLayouts(cfg.LayoutFile)
	if err != nil {
		return nil, err
	}
	settings := pipeline.DefaultSettings()
	settings.DOF.Layout = layouts.DOF
	settings.DOF.MinAGL = cfg.MinAGL
	settings.APT.Layout = layouts.APT

	dofEnc, err := faa.LookupEncoding(cfg.DOFEncoding)
	if err != nil {
		return nil, fmt.Errorf("DOF_ENCODING: %w", err)
	}
	aptEnc, err := faa.LookupEncoding(cfg.APTEncoding)
	if err != nil {
		return nil, fmt.Errorf("APT_ENCODING: %w", err)
	}

	var store pipeline.SnapshotStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pg.Close(); return nil })
		store = pg
		logger.Info("postgres store enabled")
	default:
		fs, err := filestore.New(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		store = fs
		logger.Info("file store enabled", "dir", cfg.OutputDir)
	}

	client := faa.NewClient(cfg.FetchTimeout, cfg.UserAgent, logger)
	src := pipeline.Sources{
		DOF: faa.NewDOFSource(client, cfg.DOFPageURL, cfg.DOFKeyword, dofEnc, logger),
		APT: faa.NewAPTSource(client, cfg.NASRPageURL, cfg.NASRKeyword, aptEnc, logger),
	}
	if cfg.NotamEnabled() {
		notamClient := faa.NewClient(cfg.NotamTimeout, cfg.UserAgent, logger)
		src.NOTAM = notam.NewSource(notamClient, cfg.NotamSearchURL, cfg.NotamLocations, logger)
		logger.Info("notam harvest enabled", "locations", cfg.NotamLocations)
	} else {
		logger.Info("notam harvest disabled")
	}

	var publisher pipeline.Publisher
	if cfg.PublishEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, w.Close)
		publisher = w
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	a.pipeline = pipeline.New(src, store, publisher, settings, logger, metrics)
	return a, nil
}

// errRunFailed marks a run whose report is not OK under --strict.
var errRunFailed = errors.New("run finished with failed stages")
