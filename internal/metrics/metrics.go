package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics は1回の実行におけるタスク単位のレイテンシを収集する
type Metrics struct {
	totalTasks     atomic.Uint64
	succeededTasks atomic.Uint64
	failedTasks    atomic.Uint64
	totalLatencyNs atomic.Uint64

	mu                sync.RWMutex
	startTime         time.Time
	latencies         []time.Duration
	maxLatency        time.Duration
	maxLatencySamples int
}

// New は新しいメトリクスを作成する
func New() *Metrics {
	return &Metrics{
		startTime:         time.Now(),
		latencies:         make([]time.Duration, 0, 1000),
		maxLatencySamples: 1000,
	}
}

// RecordSuccess は成功したタスクを記録する
func (m *Metrics) RecordSuccess(latency time.Duration) {
	m.totalTasks.Add(1)
	m.succeededTasks.Add(1)
	m.totalLatencyNs.Add(uint64(latency.Nanoseconds()))

	m.mu.Lock()
	if len(m.latencies) < m.maxLatencySamples {
		m.latencies = append(m.latencies, latency)
	}
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	m.mu.Unlock()
}

// RecordFailure は失敗したタスクを記録する
func (m *Metrics) RecordFailure(latency time.Duration) {
	m.totalTasks.Add(1)
	m.failedTasks.Add(1)
	m.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
}

// TotalTasks は総タスク数を返す
func (m *Metrics) TotalTasks() uint64 {
	return m.totalTasks.Load()
}

// SucceededTasks は成功タスク数を返す
func (m *Metrics) SucceededTasks() uint64 {
	return m.succeededTasks.Load()
}

// FailedTasks は失敗タスク数を返す
func (m *Metrics) FailedTasks() uint64 {
	return m.failedTasks.Load()
}

// AverageLatency は平均レイテンシを返す
func (m *Metrics) AverageLatency() time.Duration {
	total := m.totalTasks.Load()
	if total == 0 {
		return 0
	}
	avgNs := m.totalLatencyNs.Load() / total
	return time.Duration(avgNs)
}

// MaxLatency は最大レイテンシを返す
func (m *Metrics) MaxLatency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxLatency
}

// P99Latency はP99レイテンシを返す（サンプルベース）
func (m *Metrics) P99Latency() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ErrorRate はエラー率を返す（0.0〜1.0）
func (m *Metrics) ErrorRate() float64 {
	total := m.totalTasks.Load()
	if total == 0 {
		return 0
	}
	return float64(m.failedTasks.Load()) / float64(total)
}

// Elapsed は計測開始からの経過時間を返す
func (m *Metrics) Elapsed() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.startTime)
}

// Reset は収集済みの値をすべてリセットする
func (m *Metrics) Reset() {
	m.totalTasks.Store(0)
	m.succeededTasks.Store(0)
	m.failedTasks.Store(0)
	m.totalLatencyNs.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.startTime = time.Now()
	m.latencies = m.latencies[:0]
	m.maxLatency = 0
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	TotalTasks     uint64
	SucceededTasks uint64
	FailedTasks    uint64
	AverageLatency time.Duration
	P99Latency     time.Duration
	MaxLatency     time.Duration
	ErrorRate      float64
	Elapsed        time.Duration
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		TotalTasks:     m.TotalTasks(),
		SucceededTasks: m.SucceededTasks(),
		FailedTasks:    m.FailedTasks(),
		AverageLatency: m.AverageLatency(),
		P99Latency:     m.P99Latency(),
		MaxLatency:     m.MaxLatency(),
		ErrorRate:      m.ErrorRate(),
		Elapsed:        m.Elapsed(),
	}
}
