// Package bench runs the same workload under each configured concurrency
// strategy and collects per-strategy wall time and latency statistics
// into a single comparison report.
//
// The Engine assembles the workload as a chain of compute wrappers
// (slow service, optional fault injector, latency instrumentation), then
// dispatches it through the runner once per strategy. A strategy-level
// failure such as a timeout becomes a row in the report rather than
// aborting the whole comparison.
//
// Named presets cover the common experiments: a quick smoke run, the
// sequential baseline, the pool-policy comparison, fork/join, a faulty
// run, and the full matrix.
package bench
