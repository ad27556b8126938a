package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep metrics
var (
	// SweepDuration tracks how long a sweep takes
	SweepDuration prometheus.Histogram

	// FilesDeletedTotal tracks total files deleted
	FilesDeletedTotal prometheus.Counter

	// BytesFreedTotal tracks total bytes freed across all sweeps
	BytesFreedTotal prometheus.Counter

	// EntriesKeptTotal tracks kept entries by keep reason
	EntriesKeptTotal *prometheus.CounterVec

	// DeletionErrorsTotal tracks failed deletions
	DeletionErrorsTotal prometheus.Counter

	// SweepLastRunTimestamp records Unix timestamp of last sweep
	SweepLastRunTimestamp prometheus.Gauge
)

func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"coqsweep_sweep_duration_seconds",
		"Duration of sweeps in seconds.",
	)

	FilesDeletedTotal = NewCounter(
		"coqsweep_files_deleted_total",
		"Total number of files deleted by coq-sweep.",
	)

	BytesFreedTotal = NewCounter(
		"coqsweep_bytes_freed_total",
		"Total bytes freed by coq-sweep.",
	)

	EntriesKeptTotal = NewCounterVec(
		"coqsweep_entries_kept_total",
		"Total number of directory entries kept, by reason.",
		[]string{"reason"},
	)

	DeletionErrorsTotal = NewCounter(
		"coqsweep_deletion_errors_total",
		"Total number of failed deletions.",
	)

	SweepLastRunTimestamp = NewGauge(
		"coqsweep_last_run_timestamp",
		"Timestamp of the last sweep (Unix epoch seconds).",
	)
}

func registerSweepMetrics() {
	Registry.MustRegister(SweepDuration)
	Registry.MustRegister(FilesDeletedTotal)
	Registry.MustRegister(BytesFreedTotal)
	Registry.MustRegister(EntriesKeptTotal)
	Registry.MustRegister(DeletionErrorsTotal)
	Registry.MustRegister(SweepLastRunTimestamp)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordDeletion counts one deleted file of the given size
func RecordDeletion(size int64) {
	FilesDeletedTotal.Inc()
	BytesFreedTotal.Add(float64(size))
}

// RecordKeep counts one kept entry
func RecordKeep(reason string) {
	EntriesKeptTotal.WithLabelValues(reason).Inc()
}

// RecordDeletionError counts one failed deletion
func RecordDeletionError() {
	DeletionErrorsTotal.Inc()
}

// ObserveSweepDuration records how long a sweep took
func ObserveSweepDuration(d time.Duration) {
	SweepDuration.Observe(d.Seconds())
}
