// Package metrics collects per-task latency statistics for a single run.
//
// Counters use atomics so workers can record results concurrently without
// contending on a lock for the common path; latency samples for the
// percentile estimate are bounded and guarded by a mutex.
//
// A Metrics instance is scoped to one strategy run; the bench engine
// creates a fresh one per strategy and extracts a Snapshot for the
// comparison report.
package metrics
