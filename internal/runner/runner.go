package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"slowmap/internal/events"
	"slowmap/internal/logger"
	"slowmap/internal/message"
	"slowmap/internal/worker"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ComputeFunc は1つのIDを処理して結果を返す関数
// ブロック中はコンテキストのキャンセルに応答しなければならない
type ComputeFunc func(ctx context.Context, id int) (message.Message, error)

var (
	// ErrTimeout はタイムアウト超過を表す
	ErrTimeout = errors.New("timeout exceeded")
	// ErrCancelled は呼び出し側またはランタイムによる中断を表す
	ErrCancelled = errors.New("run cancelled")
	// ErrInvalidCount は不正な件数指定を表す
	ErrInvalidCount = errors.New("count must be non-negative")
)

// ComputeError は個々のタスクの計算失敗を表す
type ComputeError struct {
	ID  int
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute failed for id %d: %v", e.ID, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// PoolPolicy はプールサイズの決定方針を表す
type PoolPolicy int

const (
	// PolicyFixed はGOMAXPROCS個の固定ワーカー
	PolicyFixed PoolPolicy = iota
	// PolicyPerTask はタスクごとに1ワーカー（キャッシュ型プール相当）
	PolicyPerTask
	// PolicyStealing はワークスチール志向（Goスケジューラ自体がスチール型
	// なので、GOMAXPROCSの2倍のワーカーで飽和させる）
	PolicyStealing
)

func (p PoolPolicy) String() string {
	switch p {
	case PolicyFixed:
		return "fixed"
	case PolicyPerTask:
		return "per_task"
	case PolicyStealing:
		return "stealing"
	default:
		return "unknown"
	}
}

// size はポリシーとタスク数からワーカー数を決定する
func (p PoolPolicy) size(n int) int {
	switch p {
	case PolicyPerTask:
		if n < 1 {
			return 1
		}
		return n
	case PolicyStealing:
		return 2 * runtime.GOMAXPROCS(0)
	default:
		return runtime.GOMAXPROCS(0)
	}
}

// Runner は1つのcompute関数に対してファンアウト/ファンインを実行する
// すべての戦略は、同じ入力に対してソート後に同一の結果列を返す
type Runner struct {
	compute  ComputeFunc
	eventBus *events.Bus
}

// New は新しいRunnerを作成する
func New(compute ComputeFunc) *Runner {
	return &Runner{compute: compute}
}

// SetEventBus はイベントバスを設定する
func (r *Runner) SetEventBus(bus *events.Bus) {
	r.eventBus = bus
}

// publish はイベントを発行する
func (r *Runner) publish(event events.Event) {
	if r.eventBus != nil {
		r.eventBus.Publish(event)
	}
}

// Sequential はID順に呼び出し元ゴルーチン上で逐次実行する
// 正しさと性能比較の基準となる戦略で、所要時間は全遅延の合計に近づく
func (r *Runner) Sequential(ctx context.Context, n int) ([]message.Message, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	results := make([]message.Message, 0, n)
	for id := 0; id < n; id++ {
		select {
		case <-ctx.Done():
			return nil, finalize(ctx.Err())
		default:
		}

		msg, err := r.compute(ctx, id)
		if err != nil {
			return nil, finalize(wrapCompute(id, err))
		}
		r.publish(events.NewTaskDoneEvent("sequential", msg.ID, msg.Delay))
		results = append(results, msg)
	}

	message.SortByDelay(results)
	return results, nil
}

// Pool はN個の独立タスクを有限ワーカープールに投入して実行する
// timeoutが正の場合、期限内に全結果が揃わなければErrTimeoutで失敗し、
// 完了済みの部分結果も破棄する（all-or-nothing）
func (r *Runner) Pool(ctx context.Context, n int, policy PoolPolicy, timeout time.Duration) ([]message.Message, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n == 0 {
		return []message.Message{}, nil
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	runCtx, cancelRun := context.WithCancel(runCtx)

	queueSize := n
	pool := worker.NewPoolWithConfig(worker.PoolConfig{
		NumWorkers: policy.size(n),
		QueueSize:  queueSize,
	})
	pool.Start(runCtx)
	// cancelRunはStopより先に走り、sleep中のワーカーを即座に起こす
	defer pool.Stop()
	defer cancelRun()

	type outcome struct {
		id  int
		msg message.Message
		err error
	}
	// キューをn件にしてあるので投入はブロックしない
	// 結果チャネルもn件バッファでワーカー側の送信は決してブロックしない
	outcomes := make(chan outcome, n)

	for id := 0; id < n; id++ {
		id := id
		submitted := pool.SubmitWait(func() {
			msg, err := r.compute(runCtx, id)
			outcomes <- outcome{id: id, msg: msg, err: err}
		})
		if !submitted {
			// プールのコンテキストが先に終了した
			return nil, r.poolExit(ctx, runCtx, policy, n)
		}
	}

	// 集約は呼び出し元ゴルーチンのみが行う
	results := make([]message.Message, 0, n)
	for len(results) < n {
		select {
		case <-runCtx.Done():
			return nil, r.poolExit(ctx, runCtx, policy, n)
		case out := <-outcomes:
			if out.err != nil {
				return nil, finalize(wrapCompute(out.id, out.err))
			}
			r.publish(events.NewTaskDoneEvent("pool/"+policy.String(), out.msg.ID, out.msg.Delay))
			results = append(results, out.msg)
		}
	}

	message.SortByDelay(results)
	return results, nil
}

// poolExit はプール戦略の中断理由をエラーに変換する
func (r *Runner) poolExit(parent, runCtx context.Context, policy PoolPolicy, n int) error {
	if parent.Err() != nil {
		return finalize(parent.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("pool/"+policy.String(), "deadline exceeded, discarding partial results (%d tasks)", n)
		r.publish(events.NewRunTimeoutEvent("pool/"+policy.String(), n))
	}
	return finalize(runCtx.Err())
}

// ForkJoin はIDレンジを再帰的に二等分して並列実行する
// 分割はceil/floorで均衡し、長さ1のパーティションで再帰が終端する
// parallelismが0以下の場合はGOMAXPROCSを使用
func (r *Runner) ForkJoin(ctx context.Context, n int, parallelism int) ([]message.Message, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}

	sem := semaphore.NewWeighted(int64(parallelism))
	results, err := r.forkJoin(ctx, ids, sem)
	if err != nil {
		return nil, finalize(err)
	}

	message.SortByDelay(results)
	return results, nil
}

// forkJoin は分割統治の本体
// 葉ではセマフォで同時実行数を制限して直接計算し、
// 節では左右の半分を並列に処理して連結する
func (r *Runner) forkJoin(ctx context.Context, ids []int, sem *semaphore.Weighted) ([]message.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if len(ids) == 1 {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer sem.Release(1)

		msg, err := r.compute(ctx, ids[0])
		if err != nil {
			return nil, wrapCompute(ids[0], err)
		}
		r.publish(events.NewTaskDoneEvent("fork_join", msg.ID, msg.Delay))
		return []message.Message{msg}, nil
	}

	left, right := Split(ids)

	g, gctx := errgroup.WithContext(ctx)
	var leftResults, rightResults []message.Message

	g.Go(func() error {
		var err error
		leftResults, err = r.forkJoin(gctx, left, sem)
		return err
	})
	g.Go(func() error {
		var err error
		rightResults, err = r.forkJoin(gctx, right, sem)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(leftResults, rightResults...), nil
}

// Split はIDスライスをceil(L/2)とfloor(L/2)の2つに分割する
func Split(ids []int) (left, right []int) {
	mid := (len(ids) + 1) / 2
	return ids[:mid], ids[mid:]
}

// wrapCompute はタスク単位のエラーを分類する
// コンテキスト起因のエラーはそのまま伝播させ、finalizeで変換する
func wrapCompute(id int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ComputeError{ID: id, Err: err}
}

// finalize は実行全体の失敗理由をエラー分類体系に写す
func finalize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	default:
		return err
	}
}
