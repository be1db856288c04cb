package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"slowmap/internal/logger"
)

// Job はワーカーが実行するジョブを表す
type Job func()

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers int // ワーカー数（0でGOMAXPROCS）
	QueueSize  int // キューの容量（0でNumWorkersの100倍）
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 0, // GOMAXPROCS
		QueueSize:  0, // ワーカー数の100倍
	}
}

// Pool はゴルーチンのプールを管理する
type Pool struct {
	numWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	stopping   atomic.Bool
	mu         sync.Mutex
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 以下の場合は GOMAXPROCS を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = numWorkers * 100
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, queueSize),
	}
}

// Start はワーカープールを起動する
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.Debug("", "WorkerPool started with %d workers", p.numWorkers)
}

// worker は個々のワーカーゴルーチン
func (p *Pool) worker(_ int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		}
	}
}

// Submit はジョブをプールに送信する
// キューに空きがない場合はブロックせずfalseを返す
func (p *Pool) Submit(job Job) (submitted bool) {
	if p.stopping.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("", "Submit failed due to panic (channel may be closed): %v", r)
			submitted = false
		}
	}()

	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// SubmitWait はジョブを送信し、キューに空きがなければブロックする
func (p *Pool) SubmitWait(job Job) bool {
	if p.stopping.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Stop はワーカープールを停止する
// 全ワーカーの終了を待ってから戻るため、Stopから戻った時点で
// バックグラウンドで実行中のジョブは残っていない
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.stopping.Store(true)
	p.cancel()
	p.wg.Wait()
	close(p.jobs)

	p.mu.Lock()
	p.started = false
	p.stopping.Store(false)
	p.mu.Unlock()

	logger.Debug("", "WorkerPool stopped")
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// QueueSize は現在のキュー内ジョブ数を返す
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
