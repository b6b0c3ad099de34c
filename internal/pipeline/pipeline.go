package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
)

// StreamSource opens one dataset's decoded text stream.
type StreamSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// MessageSource returns NOTAM message bodies.
type MessageSource interface {
	Messages(ctx context.Context) ([]string, error)
}

// SnapshotStore persists whole datasets and their metadata.
type SnapshotStore interface {
	ReplaceObstacles(ctx context.Context, obstacles []domain.Obstacle) error
	ReplaceAirports(ctx context.Context, airports map[string]domain.Airport) error
	ReplaceOutages(ctx context.Context, outages []domain.Outage) error
	CountObstacles(ctx context.Context) (int, error)
	CountAirports(ctx context.Context) (int, error)
	ReadMetadata(ctx context.Context) (domain.Metadata, bool, error)
	WriteMetadata(ctx context.Context, md domain.Metadata) error
}

// Publisher hands a finished snapshot to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Sources are the upstream inputs of a run. A nil NOTAM disables the
// harvest; the NOTAM snapshot is then written empty.
type Sources struct {
	DOF   StreamSource
	APT   StreamSource
	NOTAM MessageSource
}

// Settings carry the extraction options for one pipeline.
type Settings struct {
	DOF domain.DOFOptions
	APT domain.APTOptions
}

// DefaultSettings returns the stock layouts and thresholds.
func DefaultSettings() Settings {
	return Settings{DOF: domain.DefaultDOFOptions(), APT: domain.DefaultAPTOptions()}
}

// minRetryDelay is the first wait after a run in which both primary
// datasets failed; it doubles up to the run interval.
const minRetryDelay = 5 * time.Minute

// Pipeline runs the extract-and-persist cycle.
type Pipeline struct {
	sources   Sources
	store     SnapshotStore
	publisher Publisher
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	last      atomic.Pointer[Report]
}

// New creates a Pipeline. publisher may be nil.
func New(src Sources, store SnapshotStore, publisher Publisher, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		sources:   src,
		store:     store,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has completed and, for stores that
// can report it, the store is reachable.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if !p.ready.Load() {
		return errors.New("no run has completed yet")
	}
	if rc, ok := p.store.(interface{ CheckReadiness(context.Context) error }); ok {
		return rc.CheckReadiness(ctx)
	}
	return nil
}

// LastReport returns the most recent run report, if any.
func (p *Pipeline) LastReport() (Report, bool) {
	r := p.last.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// Run executes RunOnce every interval until the context is cancelled. After
// a run in which both obstacles and airports failed it retries sooner, with
// a doubling delay capped at interval.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration) error {
	p.logger.Info("scheduler started", "interval", interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := min(minRetryDelay, interval)
	for {
		report := p.RunOnce(ctx)
		if ctx.Err() != nil {
			p.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}

		wait := interval
		if report.primaryFailed() {
			wait = backoff
			backoff = retry.NextBackoff(backoff, interval)
		} else {
			backoff = min(minRetryDelay, interval)
		}
		p.logger.Info("next run scheduled", "in", wait)

		if !retry.SleepWithContext(ctx, wait) {
			p.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce refreshes every dataset and writes metadata. Stage failures are
// absorbed: obstacles and airports keep their previous snapshot, NOTAMs
// are replaced regardless. The returned report describes what happened;
// RunOnce itself never fails.
func (p *Pipeline) RunOnce(ctx context.Context) Report {
	report := Report{RunID: uuid.NewString(), StartedAt: domain.Now()}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("run started")

	prev, found, err := p.store.ReadMetadata(ctx)
	if err != nil {
		logger.Warn("previous metadata unreadable", "error", err)
		found = false
	}
	if !found {
		prev = domain.Metadata{DOFDate: domain.Unknown}
	}

	dof, dofDate := p.runObstacles(ctx, logger, prev.DOFDate)
	apt, aptDate := p.runAirports(ctx, logger, prev.APTDate)
	notam, outages := p.runOutages(ctx, logger)
	report.Stages = []StageReport{dof, apt, notam}

	report.Metadata = domain.Metadata{
		DOFDate:  dofDate,
		APTDate:  aptDate,
		APTCount: apt.Persisted,
		OBSCount: dof.Persisted,
	}
	if err := p.store.WriteMetadata(ctx, report.Metadata); err != nil {
		logger.Error("write metadata failed", "error", err)
		report.MetadataError = err.Error()
	}

	report.FinishedAt = domain.Now()
	if p.publisher != nil {
		snap := domain.Snapshot{
			RunID:       report.RunID,
			GeneratedAt: report.FinishedAt,
			Metadata:    report.Metadata,
			Outages:     outages,
		}
		if err := p.publisher.Publish(ctx, snap); err != nil {
			logger.Error("publish snapshot failed", "error", err)
			p.metrics.StageFailures.WithLabelValues(DatasetNOTAM, reasonPublish).Inc()
			report.PublishError = err.Error()
		}
	}

	p.metrics.DatasetRecords.WithLabelValues(DatasetDOF).Set(float64(dof.Persisted))
	p.metrics.DatasetRecords.WithLabelValues(DatasetAPT).Set(float64(apt.Persisted))
	p.metrics.DatasetRecords.WithLabelValues(DatasetNOTAM).Set(float64(notam.Persisted))
	p.metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	p.metrics.LastRunTimestamp.Set(float64(report.FinishedAt.Unix()))

	logger.Info("run finished",
		"ok", report.OK(),
		"obs_count", report.Metadata.OBSCount,
		"apt_count", report.Metadata.APTCount,
		"dof_date", report.Metadata.DOFDate,
		"apt_date", report.Metadata.APTDate,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	p.last.Store(&report)
	p.ready.Store(true)
	return report
}
