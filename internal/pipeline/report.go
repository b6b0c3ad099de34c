package pipeline

import (
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
)

// Outcome is what a stage did to its persisted dataset.
type Outcome string

const (
	// OutcomeReplaced means fresh records replaced the snapshot.
	OutcomeReplaced Outcome = "replaced"
	// OutcomeRetained means extraction produced nothing and the previous
	// snapshot was kept.
	OutcomeRetained Outcome = "retained"
	// OutcomeFailed means the stage errored; for obstacles and airports the
	// previous snapshot is still in place.
	OutcomeFailed Outcome = "failed"
	// OutcomeDisabled means the stage has no source configured.
	OutcomeDisabled Outcome = "disabled"
)

// Dataset names used in reports, logs and metric labels.
const (
	DatasetDOF   = "dof"
	DatasetAPT   = "apt"
	DatasetNOTAM = "notam"
)

// Failure reasons used in reports and metric labels.
const (
	reasonFetch   = "fetch"
	reasonRead    = "read"
	reasonEmpty   = "empty"
	reasonStore   = "store"
	reasonCount   = "count"
	reasonPublish = "publish"
)

// StageReport summarizes one dataset in a run.
type StageReport struct {
	Dataset   string         `json:"dataset"`
	Outcome   Outcome        `json:"outcome"`
	Extracted int            `json:"extracted"`
	Persisted int            `json:"persisted"`
	Lines     int            `json:"lines"`
	Skipped   map[string]int `json:"skipped,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (s *StageReport) fail(reason string, err error) {
	s.Outcome = OutcomeFailed
	s.Reason = reason
	s.Error = err.Error()
}

func (s *StageReport) record(stats domain.ExtractStats) {
	s.Lines = stats.Lines
	s.Extracted = stats.Records
	if len(stats.Skipped) > 0 {
		s.Skipped = stats.Skipped
	}
}

// Report is the result of one RunOnce.
type Report struct {
	RunID         string          `json:"run_id"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Metadata      domain.Metadata `json:"metadata"`
	MetadataError string          `json:"metadata_error,omitempty"`
	PublishError  string          `json:"publish_error,omitempty"`
	Stages        []StageReport   `json:"stages"`
}

// Stage returns the report for dataset, if the run has one.
func (r Report) Stage(dataset string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Dataset == dataset {
			return s, true
		}
	}
	return StageReport{}, false
}

// OK reports whether every stage either replaced or deliberately kept its
// snapshot and metadata was written.
func (r Report) OK() bool {
	if r.MetadataError != "" {
		return false
	}
	for _, s := range r.Stages {
		if s.Outcome == OutcomeFailed {
			return false
		}
	}
	return true
}

// primaryFailed reports whether neither obstacles nor airports were
// refreshed because both stages errored.
func (r Report) primaryFailed() bool {
	dof, _ := r.Stage(DatasetDOF)
	apt, _ := r.Stage(DatasetAPT)
	return dof.Outcome == OutcomeFailed && apt.Outcome == OutcomeFailed
}
