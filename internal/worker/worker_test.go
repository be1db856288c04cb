package worker

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	pool := NewPool(4)
	if pool.NumWorkers() != 4 {
		t.Errorf("expected 4 workers, got %d", pool.NumWorkers())
	}

	// Zero should default to GOMAXPROCS
	pool2 := NewPool(0)
	if pool2.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("expected %d workers, got %d", runtime.GOMAXPROCS(0), pool2.NumWorkers())
	}
}

func TestWorkerPoolQueueCapacity(t *testing.T) {
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 2, QueueSize: 64})
	if cap(pool.jobs) != 64 {
		t.Errorf("expected queue capacity 64, got %d", cap(pool.jobs))
	}

	// Zero queue size should default to NumWorkers * 100
	pool2 := NewPoolWithConfig(PoolConfig{NumWorkers: 2})
	if cap(pool2.jobs) != 200 {
		t.Errorf("expected queue capacity 200, got %d", cap(pool2.jobs))
	}
}

func TestWorkerPoolStartStop(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()

	pool.Start(ctx)
	// Double start should be no-op
	pool.Start(ctx)

	pool.Stop()
	// Double stop should be no-op
	pool.Stop()
}

func TestWorkerPoolSubmit(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			counter.Add(1)
		})
	}

	go func() {
		for counter.Load() < 10 {
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-time.After(time.Second):
		t.Error("timeout waiting for jobs to complete")
	}

	if counter.Load() != 10 {
		t.Errorf("expected 10 jobs completed, got %d", counter.Load())
	}
}

func TestWorkerPoolSubmitFullQueue(t *testing.T) {
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 1, QueueSize: 1})
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	blocker := make(chan struct{})
	defer close(blocker)

	// Occupy the single worker
	pool.Submit(func() { <-blocker })

	// Give the worker time to pick up the blocking job
	time.Sleep(20 * time.Millisecond)

	// Fill the queue, then one more must be rejected without blocking
	pool.Submit(func() { <-blocker })
	if pool.Submit(func() {}) {
		t.Error("expected Submit to return false when queue is full")
	}
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	pool.Stop()

	// Submit after stop should return false
	result := pool.Submit(func() {})
	if result {
		t.Error("expected Submit to return false after stop")
	}
}

func TestWorkerPoolQueueSize(t *testing.T) {
	pool := NewPool(1)
	ctx := context.Background()

	pool.Start(ctx)
	defer pool.Stop()

	// Queue should be empty initially
	if pool.QueueSize() != 0 {
		t.Errorf("expected queue size 0, got %d", pool.QueueSize())
	}
}

func TestWorkerPoolContextCancel(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	var counter atomic.Int32
	blocker := make(chan struct{})

	// Submit a blocking job
	pool.Submit(func() {
		<-blocker
		counter.Add(1)
	})

	// Cancel context
	cancel()

	// Unblock the job
	close(blocker)

	// Give time for workers to stop
	time.Sleep(50 * time.Millisecond)

	// Submit after context cancel should fail
	result := pool.Submit(func() {
		counter.Add(1)
	})
	if result {
		t.Error("expected Submit to return false after context cancel")
	}

	pool.Stop()
}

func TestWorkerPoolSubmitWait(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32

	// Submit jobs using SubmitWait
	for i := 0; i < 5; i++ {
		result := pool.SubmitWait(func() {
			counter.Add(1)
		})
		if !result {
			t.Error("expected SubmitWait to return true")
		}
	}

	// Wait for jobs to complete
	time.Sleep(50 * time.Millisecond)

	if counter.Load() != 5 {
		t.Errorf("expected 5 jobs completed, got %d", counter.Load())
	}
}

func TestWorkerPoolSubmitWaitAfterCancel(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	cancel()

	// SubmitWait after cancel should return false
	result := pool.SubmitWait(func() {})
	if result {
		t.Error("expected SubmitWait to return false after cancel")
	}

	pool.Stop()
}

func TestWorkerPoolNegativeWorkers(t *testing.T) {
	// Negative workers should default to GOMAXPROCS
	pool := NewPool(-5)
	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("expected %d workers for negative input, got %d", runtime.GOMAXPROCS(0), pool.NumWorkers())
	}
}

func TestWorkerPoolConcurrentSubmit(t *testing.T) {
	pool := NewPool(4)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32
	const numGoroutines = 10
	const jobsPerGoroutine = 100

	var wg atomic.Int32
	wg.Store(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < jobsPerGoroutine; j++ {
				pool.SubmitWait(func() {
					counter.Add(1)
				})
			}
			wg.Add(-1)
		}()
	}

	// Wait for all goroutines to finish submitting
	for wg.Load() > 0 {
		time.Sleep(time.Millisecond)
	}

	// Wait for all jobs to complete
	time.Sleep(100 * time.Millisecond)

	expected := int32(numGoroutines * jobsPerGoroutine)
	if counter.Load() != expected {
		t.Errorf("expected %d jobs completed, got %d", expected, counter.Load())
	}
}
