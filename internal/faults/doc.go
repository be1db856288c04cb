// Package faults injects deterministic failures into a compute function.
//
// An Injector wraps a runner.ComputeFunc and applies per-id rules: fail
// with an error, insert extra delay, or stall until the context is done.
// Rules depend only on the id, so a faulty run is exactly reproducible.
//
// The injector exercises the error paths of the runner strategies: an
// error rule triggers the all-or-nothing compute failure, and a stall
// rule guarantees a pool deadline will be exceeded.
package faults
