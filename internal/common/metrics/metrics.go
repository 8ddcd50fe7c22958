package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	SheetRowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_rows_loaded_total",
			Help: "Rows read from the sheet source, per tab",
		},
		[]string{"tab"},
	)

	DatesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_dates_rejected_total",
			Help: "Non-blank cells that could not be parsed as a date",
		},
	)

	RoundsBuilt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "schedule_rounds_built",
			Help: "Rounds in the most recently built registry",
		},
	)

	FeasibilityVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feasibility_verdicts_total",
			Help: "Feasibility evaluations by verdict",
		},
		[]string{"verdict"},
	)

	SnapshotCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
