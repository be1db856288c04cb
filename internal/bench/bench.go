package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slowmap/internal/events"
	"slowmap/internal/faults"
	"slowmap/internal/logger"
	"slowmap/internal/message"
	"slowmap/internal/metrics"
	"slowmap/internal/runner"
	"slowmap/internal/service"
)

// Strategy は比較対象の実行戦略を表す
type Strategy string

const (
	StrategySequential   Strategy = "sequential"
	StrategyFixedPool    Strategy = "fixed_pool"
	StrategyPerTaskPool  Strategy = "per_task_pool"
	StrategyStealingPool Strategy = "stealing_pool"
	StrategyForkJoin     Strategy = "fork_join"
)

// AllStrategies は全戦略を返す
func AllStrategies() []Strategy {
	return []Strategy{
		StrategySequential,
		StrategyFixedPool,
		StrategyPerTaskPool,
		StrategyStealingPool,
		StrategyForkJoin,
	}
}

// ParseStrategy は文字列から戦略を取得する
func ParseStrategy(s string) (Strategy, bool) {
	for _, strategy := range AllStrategies() {
		if s == string(strategy) {
			return strategy, true
		}
	}
	return "", false
}

// Config は比較実行の設定
type Config struct {
	Name        string        // 設定名
	Description string        // 説明
	Count       int           // タスク数（ID 0..Count-1）
	Timeout     time.Duration // プール戦略のタイムアウト（0で無制限）
	Parallelism int           // fork/joinの並列度ヒント（0でGOMAXPROCS）
	Strategies  []Strategy    // 実行する戦略

	// サービス設定
	BaseUnit time.Duration // 遅延の基本単位
	Spread   int           // 遅延の段階数

	// 障害注入設定
	EnableFaults bool
	FaultRules   []faults.Rule
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		Description: "Default comparison run",
		Count:       100,
		Timeout:     10 * time.Second,
		Parallelism: 0,
		Strategies:  AllStrategies(),
		BaseUnit:    10 * time.Millisecond,
		Spread:      100,
	}
}

// StrategyResult は1戦略の実行結果
type StrategyResult struct {
	Strategy Strategy
	WallTime time.Duration
	Err      string // 空文字で成功

	Metrics metrics.Snapshot

	SlowestID    int
	SlowestDelay time.Duration
}

// Result は比較実行全体の結果
type Result struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Count     int

	Strategies []StrategyResult
	FaultStats *faults.Stats
}

// Engine は比較実行エンジン
type Engine struct {
	config   Config
	eventBus *events.Bus

	mu      sync.RWMutex
	running bool
}

// New は新しいEngineを作成する
func New(config Config) *Engine {
	return &Engine{
		config: config,
	}
}

// SetEventBus はイベントバスを設定する
func (e *Engine) SetEventBus(bus *events.Bus) {
	e.eventBus = bus
}

// publish はイベントを発行する
func (e *Engine) publish(event events.Event) {
	if e.eventBus != nil {
		e.eventBus.Publish(event)
	}
}

// Run は設定された全戦略を同一ワークロードで実行する
// 戦略単位の失敗（タイムアウト等）は結果の1行として記録され、
// 実行全体は中断しない
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, fmt.Errorf("comparison run is already running")
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	if e.config.Count < 0 {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidCount, e.config.Count)
	}
	if len(e.config.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies configured")
	}

	logger.Info("", "=== Comparison '%s' started ===", e.config.Name)
	logger.Info("", "Description: %s", e.config.Description)

	result := &Result{
		Name:      e.config.Name,
		StartTime: time.Now(),
		Count:     e.config.Count,
	}

	// ワークロードの組み立て：service → (faults) → metrics の順にラップする
	svc := service.NewWithConfig(service.Config{
		BaseUnit: e.config.BaseUnit,
		Spread:   e.config.Spread,
	})
	compute := runner.ComputeFunc(svc.Compute)

	var injector *faults.Injector
	if e.config.EnableFaults {
		injector = faults.New(e.config.FaultRules...)
		if e.eventBus != nil {
			injector.SetEventBus(e.eventBus)
		}
		compute = injector.Wrap(compute)
	}

	for _, strategy := range e.config.Strategies {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", runner.ErrCancelled, ctx.Err())
		default:
		}

		result.Strategies = append(result.Strategies, e.runStrategy(ctx, strategy, compute))
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if injector != nil {
		stats := injector.Stats()
		result.FaultStats = &stats
	}

	logger.Info("", "=== Comparison '%s' completed ===", e.config.Name)

	return result, nil
}

// runStrategy は1戦略を実行して結果を収集する
func (e *Engine) runStrategy(ctx context.Context, strategy Strategy, compute runner.ComputeFunc) StrategyResult {
	m := metrics.New()
	r := runner.New(instrument(compute, m))
	if e.eventBus != nil {
		r.SetEventBus(e.eventBus)
	}

	e.publish(events.NewRunStartEvent(string(strategy), e.config.Count))
	logger.Info(string(strategy), "running %d tasks", e.config.Count)

	start := time.Now()
	results, err := e.dispatch(ctx, r, strategy)
	wallTime := time.Since(start)

	sr := StrategyResult{
		Strategy: strategy,
		WallTime: wallTime,
		Metrics:  m.Snapshot(),
	}

	if err != nil {
		sr.Err = err.Error()
		logger.Warn(string(strategy), "run failed after %v: %v", wallTime.Round(time.Millisecond), err)
		e.publish(events.NewRunFailedEvent(string(strategy), err))
		return sr
	}

	if slowest, ok := message.Slowest(results); ok {
		sr.SlowestID = slowest.ID
		sr.SlowestDelay = slowest.Delay
	}

	logger.Info(string(strategy), "completed %d tasks in %v", len(results), wallTime.Round(time.Millisecond))
	e.publish(events.NewRunCompleteEvent(string(strategy), len(results), wallTime))

	return sr
}

// dispatch は戦略名をrunnerの呼び出しに対応付ける
func (e *Engine) dispatch(ctx context.Context, r *runner.Runner, strategy Strategy) ([]message.Message, error) {
	switch strategy {
	case StrategySequential:
		return r.Sequential(ctx, e.config.Count)
	case StrategyFixedPool:
		return r.Pool(ctx, e.config.Count, runner.PolicyFixed, e.config.Timeout)
	case StrategyPerTaskPool:
		return r.Pool(ctx, e.config.Count, runner.PolicyPerTask, e.config.Timeout)
	case StrategyStealingPool:
		return r.Pool(ctx, e.config.Count, runner.PolicyStealing, e.config.Timeout)
	case StrategyForkJoin:
		return r.ForkJoin(ctx, e.config.Count, e.config.Parallelism)
	default:
		return nil, fmt.Errorf("unknown strategy: %s", strategy)
	}
}

// instrument はcompute関数にレイテンシ計測を重ねる
func instrument(next runner.ComputeFunc, m *metrics.Metrics) runner.ComputeFunc {
	return func(ctx context.Context, id int) (message.Message, error) {
		start := time.Now()
		msg, err := next(ctx, id)
		if err != nil {
			m.RecordFailure(time.Since(start))
			return msg, err
		}
		m.RecordSuccess(time.Since(start))
		return msg, nil
	}
}

// IsRunning は実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}
