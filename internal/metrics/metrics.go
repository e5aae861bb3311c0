// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the warehouse loader.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, DogStatsD) live in
//     subpackages; the rest of the codebase depends only on this interface.
//
// The primary use case is instrumentation of the pipeline phases (staging
// create, staging copy, catalog, events) and of per-table row volumes,
// without coupling the loader to a specific metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordPhase measures one pipeline phase: latency plus success/failure.
//
// Phases mirror the loader's state machine, e.g. "create_staging",
// "copy_staging", "catalog", "events".
func RecordPhase(phase string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"phase":  phase,
		"status": status,
	}

	backend.IncCounter("sparkify_phase_total", 1, lbls)
	backend.ObserveDuration("sparkify_phase_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments the per-table row counter.
//
// Typical tables are the five analytics tables plus the two staging tables;
// the special name "songplays_unresolved" counts fact rows written without a
// catalog match.
func RecordRows(table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("sparkify_rows_total", float64(delta), Labels{
		"table": table,
	})
}
