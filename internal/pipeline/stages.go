package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

// runObstacles refreshes obstacles. It returns the stage report and the
// dof_date to record: the fresh currency date when the snapshot was
// replaced, prevDate otherwise.
func (p *Pipeline) runObstacles(ctx context.Context, logger *slog.Logger, prevDate string) (StageReport, string) {
	stage := StageReport{Dataset: DatasetDOF}
	logger = logger.With("dataset", DatasetDOF)

	var res domain.ObstacleResult
	err := p.extract(ctx, DatasetDOF, p.sources.DOF, func(r io.Reader) error {
		var err error
		res, err = domain.ExtractObstacles(r, p.settings.DOF)
		return err
	})
	stage.record(res.Stats)
	p.recordStats(DatasetDOF, res.Stats)

	if p.settle(ctx, logger, &stage, err, len(res.Obstacles), func() error {
		return p.store.ReplaceObstacles(ctx, res.Obstacles)
	}, p.store.CountObstacles) {
		return stage, res.CurrencyDate
	}
	if prevDate == "" {
		prevDate = domain.Unknown
	}
	return stage, prevDate
}

// runAirports refreshes airports. The apt_date is the current cycle date
// when replaced, prevDate otherwise.
func (p *Pipeline) runAirports(ctx context.Context, logger *slog.Logger, prevDate string) (StageReport, string) {
	stage := StageReport{Dataset: DatasetAPT}
	logger = logger.With("dataset", DatasetAPT)

	var res domain.AirportResult
	err := p.extract(ctx, DatasetAPT, p.sources.APT, func(r io.Reader) error {
		var err error
		res, err = domain.ExtractAirports(r, p.settings.APT)
		return err
	})
	stage.record(res.Stats)
	p.recordStats(DatasetAPT, res.Stats)

	if p.settle(ctx, logger, &stage, err, len(res.Airports), func() error {
		return p.store.ReplaceAirports(ctx, res.Airports)
	}, p.store.CountAirports) {
		return stage, domain.CycleKey(domain.CurrentCycle())
	}
	return stage, prevDate
}

// runOutages harvests NOTAMs and always replaces the outage snapshot, with
// an empty set when the harvest is disabled or fails.
func (p *Pipeline) runOutages(ctx context.Context, logger *slog.Logger) (StageReport, []domain.Outage) {
	stage := StageReport{Dataset: DatasetNOTAM, Outcome: OutcomeReplaced}
	logger = logger.With("dataset", DatasetNOTAM)

	var outages []domain.Outage
	switch {
	case p.sources.NOTAM == nil:
		stage.Outcome = OutcomeDisabled
	default:
		start := time.Now()
		msgs, err := p.sources.NOTAM.Messages(ctx)
		p.metrics.FetchDuration.WithLabelValues(DatasetNOTAM).Observe(time.Since(start).Seconds())
		if err != nil {
			stage.fail(reasonFetch, err)
			p.metrics.StageFailures.WithLabelValues(DatasetNOTAM, reasonFetch).Inc()
			logger.Warn("notam harvest failed", "error", err)
			break
		}
		res := domain.ExtractOutages(msgs)
		stage.record(res.Stats)
		p.recordStats(DatasetNOTAM, res.Stats)
		outages = res.Outages
	}

	if err := p.store.ReplaceOutages(ctx, outages); err != nil {
		stage.fail(reasonStore, err)
		p.metrics.StageFailures.WithLabelValues(DatasetNOTAM, reasonStore).Inc()
		logger.Error("replace outages failed", "error", err)
		return stage, outages
	}
	stage.Persisted = len(outages)
	logger.Info("stage finished", "outcome", stage.Outcome, "records", stage.Persisted, "skipped", stage.Skipped)
	return stage, outages
}

// extract opens src and feeds the stream to decode. The stream is closed
// before returning.
func (p *Pipeline) extract(ctx context.Context, dataset string, src StreamSource, decode func(io.Reader) error) error {
	if src == nil {
		return errors.New("no source configured")
	}
	start := time.Now()
	defer func() {
		p.metrics.FetchDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	}()

	rc, err := src.Open(ctx)
	if err != nil {
		return &stageError{reason: reasonFetch, err: err}
	}
	defer rc.Close()

	if err := decode(rc); err != nil {
		return &stageError{reason: reasonRead, err: err}
	}
	return nil
}

// settle applies the failsafe: a clean, non-empty extraction replaces the
// snapshot; anything else keeps it and back-fills the persisted count.
// It reports whether the snapshot was replaced.
func (p *Pipeline) settle(
	ctx context.Context,
	logger *slog.Logger,
	stage *StageReport,
	extractErr error,
	fresh int,
	replace func() error,
	count func(context.Context) (int, error),
) bool {
	dataset := stage.Dataset
	switch {
	case extractErr != nil:
		reason := reasonFetch
		var se *stageError
		if errors.As(extractErr, &se) {
			reason = se.reason
		}
		stage.fail(reason, extractErr)
		p.metrics.StageFailures.WithLabelValues(dataset, reason).Inc()
		logger.Error("stage failed, keeping previous snapshot", "reason", reason, "error", extractErr)
	case fresh == 0:
		stage.Outcome = OutcomeRetained
		stage.Reason = reasonEmpty
		p.metrics.StageFailures.WithLabelValues(dataset, reasonEmpty).Inc()
		logger.Warn("stage produced no records, keeping previous snapshot", "lines", stage.Lines, "skipped", stage.Skipped)
	default:
		if err := replace(); err != nil {
			stage.fail(reasonStore, err)
			p.metrics.StageFailures.WithLabelValues(dataset, reasonStore).Inc()
			logger.Error("replace snapshot failed, keeping previous snapshot", "error", err)
			break
		}
		stage.Outcome = OutcomeReplaced
		stage.Persisted = fresh
		logger.Info("stage finished", "outcome", stage.Outcome, "records", fresh, "lines", stage.Lines, "skipped", stage.Skipped)
		return true
	}

	p.metrics.SnapshotsRetained.WithLabelValues(dataset).Inc()
	n, err := count(ctx)
	if err != nil {
		p.metrics.StageFailures.WithLabelValues(dataset, reasonCount).Inc()
		logger.Error("count retained snapshot failed", "error", err)
	}
	stage.Persisted = n
	return false
}

func (p *Pipeline) recordStats(dataset string, stats domain.ExtractStats) {
	p.metrics.RecordsExtracted.WithLabelValues(dataset).Add(float64(stats.Records))
	for reason, n := range stats.Skipped {
		p.metrics.LinesSkipped.WithLabelValues(dataset, reason).Add(float64(n))
	}
}

// stageError tags an extraction error with its metric reason.
type stageError struct {
	reason string
	err    error
}

func (e *stageError) Error() string { return fmt.Sprintf("%s: %v", e.reason, e.err) }

func (e *stageError) Unwrap() error { return e.err }
