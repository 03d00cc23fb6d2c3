// Package metrics counts runs, steps and persistence failures in a private
// Prometheus registry. Batch sweeps have no scrape endpoint, so the
// registry is written out as a node_exporter textfile when a sweep ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Run statuses.
const (
	StatusOK            = "ok"
	StatusPersistFailed = "persist_failed"
	StatusFailed        = "failed"
)

// Persistence targets.
const (
	TargetSink    = "sink"
	TargetArchive = "archive"
)

// Recorder holds the sweep metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	steps           prometheus.Counter
	persistFailures *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lanesim_runs_total",
			Help: "Completed simulation runs by sweep case and status.",
		}, []string{"case", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lanesim_run_duration_seconds",
			Help:    "Wall time of a single simulation run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"case"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanesim_steps_total",
			Help: "Lattice update steps executed across all runs.",
		}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lanesim_persist_failures_total",
			Help: "Failed writes of run output by target.",
		}, []string{"target"}),
	}
	r.registry.MustRegister(r.runs, r.runDuration, r.steps, r.persistFailures)
	return r
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(caseID, status string, seconds float64, steps int) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(caseID, status).Inc()
	r.runDuration.WithLabelValues(caseID).Observe(seconds)
	r.steps.Add(float64(steps))
}

// PersistFailed counts a failed write to target.
func (r *Recorder) PersistFailed(target string) {
	if r == nil {
		return
	}
	r.persistFailures.WithLabelValues(target).Inc()
}

// WriteTextfile writes the registry in the text exposition format. The
// file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return fmt.Errorf("metrics recorder is not initialized")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
