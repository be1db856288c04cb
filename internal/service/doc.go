// Package service provides the simulated slow backend.
//
// SlowService derives a deterministic pseudo-random delay from the work
// item id, blocks for that delay (honoring context cancellation), and
// returns an immutable Message. It holds no shared mutable state, so a
// single instance is safe for concurrent use from any number of
// goroutines without synchronization.
//
// The delay function is swappable: tests use zero-delay or fixed-delay
// stubs for fast, exact assertions.
package service
