package report

// If the profiler misbehaves, the measured workload MUST continue.
// Visibility here is boring counters only: every value must be
// explainable by looking at a single row outcome.

import "sync/atomic"

// Metrics counts writer and measurement outcomes. No histograms,
// no percentiles, no interpretation of recorded rows.
type Metrics struct {
	// Measurement lifecycle
	MeasurementsStarted  atomic.Uint64 // Incremented on Start (any entry mode)
	MeasurementsFinished atomic.Uint64 // Incremented once per finalization

	// Broken path (source of truth: the row's broken flag)
	MeasurementsBroken atomic.Uint64

	// Writer outcomes (one of these per finished measurement)
	RowsWritten  atomic.Uint64 // Row durably appended to the shared file
	RowsDropped  atomic.Uint64 // Row abandoned under ignore-timeout policy
	WriteErrors  atomic.Uint64 // Sink failed for a non-timeout reason
	LockTimeouts atomic.Uint64 // Lock wait expired (dropped or surfaced)
}

var globalMetrics = &Metrics{}

// Global returns the process-wide metrics instance
func Global() *Metrics {
	return globalMetrics
}

// Snapshot returns current counter values (for Prometheus export)
func (m *Metrics) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"measurements_started":  m.MeasurementsStarted.Load(),
		"measurements_finished": m.MeasurementsFinished.Load(),
		"measurements_broken":   m.MeasurementsBroken.Load(),
		"rows_written":          m.RowsWritten.Load(),
		"rows_dropped":          m.RowsDropped.Load(),
		"write_errors":          m.WriteErrors.Load(),
		"lock_timeouts":         m.LockTimeouts.Load(),
	}
}
