package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsRecordSuccess(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(20 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)

	if m.TotalTasks() != 3 {
		t.Errorf("expected 3 total tasks, got %d", m.TotalTasks())
	}
	if m.SucceededTasks() != 3 {
		t.Errorf("expected 3 succeeded tasks, got %d", m.SucceededTasks())
	}
	if m.FailedTasks() != 0 {
		t.Errorf("expected 0 failed tasks, got %d", m.FailedTasks())
	}
	if m.AverageLatency() != 20*time.Millisecond {
		t.Errorf("expected average 20ms, got %v", m.AverageLatency())
	}
	if m.MaxLatency() != 30*time.Millisecond {
		t.Errorf("expected max 30ms, got %v", m.MaxLatency())
	}
}

func TestMetricsRecordFailure(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordFailure(10 * time.Millisecond)

	if m.TotalTasks() != 2 {
		t.Errorf("expected 2 total tasks, got %d", m.TotalTasks())
	}
	if m.FailedTasks() != 1 {
		t.Errorf("expected 1 failed task, got %d", m.FailedTasks())
	}
	if m.ErrorRate() != 0.5 {
		t.Errorf("expected error rate 0.5, got %f", m.ErrorRate())
	}
}

func TestMetricsEmpty(t *testing.T) {
	m := New()

	if m.AverageLatency() != 0 {
		t.Errorf("expected 0 average for empty metrics, got %v", m.AverageLatency())
	}
	if m.P99Latency() != 0 {
		t.Errorf("expected 0 p99 for empty metrics, got %v", m.P99Latency())
	}
	if m.ErrorRate() != 0 {
		t.Errorf("expected 0 error rate for empty metrics, got %f", m.ErrorRate())
	}
}

func TestMetricsP99(t *testing.T) {
	m := New()

	// 100 samples: 1ms..100ms
	for i := 1; i <= 100; i++ {
		m.RecordSuccess(time.Duration(i) * time.Millisecond)
	}

	p99 := m.P99Latency()
	if p99 < 99*time.Millisecond || p99 > 100*time.Millisecond {
		t.Errorf("expected p99 around 99-100ms, got %v", p99)
	}
}

func TestMetricsReset(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordFailure(5 * time.Millisecond)
	m.Reset()

	if m.TotalTasks() != 0 {
		t.Errorf("expected 0 tasks after reset, got %d", m.TotalTasks())
	}
	if m.MaxLatency() != 0 {
		t.Errorf("expected 0 max latency after reset, got %v", m.MaxLatency())
	}
	if m.AverageLatency() != 0 {
		t.Errorf("expected 0 average after reset, got %v", m.AverageLatency())
	}
}

func TestMetricsConcurrentRecord(t *testing.T) {
	m := New()

	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.RecordSuccess(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if m.TotalTasks() != goroutines*perGoroutine {
		t.Errorf("expected %d tasks, got %d", goroutines*perGoroutine, m.TotalTasks())
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := New()

	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)

	snap := m.Snapshot()

	if snap.TotalTasks != 2 {
		t.Errorf("expected 2 tasks in snapshot, got %d", snap.TotalTasks)
	}
	if snap.AverageLatency != 20*time.Millisecond {
		t.Errorf("expected 20ms average in snapshot, got %v", snap.AverageLatency)
	}
	if snap.MaxLatency != 30*time.Millisecond {
		t.Errorf("expected 30ms max in snapshot, got %v", snap.MaxLatency)
	}
}
