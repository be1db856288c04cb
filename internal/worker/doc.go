// Package worker provides a goroutine pool for concurrent job execution.
//
// The Pool manages a fixed number of worker goroutines that process jobs
// from a shared queue. It supports graceful shutdown and context
// cancellation: Stop waits for every worker goroutine to exit, so no job
// is left running in the background after it returns.
//
// The runner package uses a Pool as the execution substrate for its
// bounded-pool strategy, sizing the queue so that a whole batch can be
// submitted without blocking.
package worker
