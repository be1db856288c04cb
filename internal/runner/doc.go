// Package runner implements the fan-out/fan-in core: execute a compute
// function for ids 0..N-1 under a selected concurrency strategy and
// return all N results sorted by ascending delay.
//
// Three strategies share one contract:
//
//   - Sequential runs on the calling goroutine in index order and is the
//     correctness and performance baseline.
//   - Pool submits N independent tasks to a bounded worker pool with an
//     optional global timeout. On expiry the whole call fails with
//     ErrTimeout and completed partial results are discarded.
//   - ForkJoin recursively splits the id range into balanced halves,
//     processes singleton partitions directly, and concatenates partial
//     sequences at each join point. A semaphore bounds leaf parallelism.
//
// There is no shared mutable state between tasks; aggregation happens
// only at the join points, performed by a single coordinating goroutine.
// Given the same deterministic compute function, the final sorted
// sequence is identical for every strategy.
package runner
