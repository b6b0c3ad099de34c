package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "obstacle_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL run.
type Metrics struct {
	RecordsExtracted  *prometheus.CounterVec // labels: dataset={dof,apt,notam}
	LinesSkipped      *prometheus.CounterVec // labels: dataset, reason
	StageFailures     *prometheus.CounterVec // labels: dataset, reason={fetch,read,empty,store,publish}
	SnapshotsRetained *prometheus.CounterVec // labels: dataset
	DatasetRecords    *prometheus.GaugeVec   // labels: dataset; persisted count after the run

	FetchDuration *prometheus.HistogramVec // labels: dataset
	RunDuration   prometheus.Histogram

	PipelineRunning  prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Records decoded from source streams.",
		}, []string{"dataset"}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_skipped_total",
			Help:      "Source lines or messages dropped, by reason.",
		}, []string{"dataset", "reason"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Stage failures absorbed by the run, by reason.",
		}, []string{"dataset", "reason"}),
		SnapshotsRetained: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_retained_total",
			Help:      "Runs that kept the previous snapshot instead of replacing it.",
		}, []string{"dataset"}),
		DatasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the persisted snapshot after the last run.",
		}, []string{"dataset"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time to locate, download and decode one dataset.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"dataset"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while the scheduler is active, 0 when shut down.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsExtracted,
		m.LinesSkipped,
		m.StageFailures,
		m.SnapshotsRetained,
		m.DatasetRecords,
		m.FetchDuration,
		m.RunDuration,
		m.PipelineRunning,
		m.LastRunTimestamp,
	}
}

// Push sends the run metrics to a Prometheus Pushgateway, replacing any
// earlier push for the same job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	pusher := push.New(url, job)
	for _, c := range m.collectors() {
		pusher = pusher.Collector(c)
	}
	return pusher.PushContext(ctx)
}
