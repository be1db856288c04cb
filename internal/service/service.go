package service

import (
	"context"
	"fmt"
	"time"

	"slowmap/internal/message"
)

// DelayFunc はIDから遅延時間を導出する関数
type DelayFunc func(id int) time.Duration

// Config はSlowServiceの設定
type Config struct {
	BaseUnit time.Duration // 遅延の基本単位
	Spread   int           // 遅延の段階数（1〜Spread倍）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		BaseUnit: 10 * time.Millisecond,
		Spread:   100,
	}
}

// SlowService は可変レイテンシの遅いサービスをシミュレートする
// 共有状態を持たないため、複数ゴルーチンから同時に呼び出せる
type SlowService struct {
	delayFn DelayFunc
}

// New はデフォルト設定のSlowServiceを作成する
func New() *SlowService {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig は設定を指定してSlowServiceを作成する
func NewWithConfig(config Config) *SlowService {
	if config.BaseUnit <= 0 {
		config.BaseUnit = DefaultConfig().BaseUnit
	}
	if config.Spread <= 0 {
		config.Spread = DefaultConfig().Spread
	}
	return &SlowService{
		delayFn: DeterministicDelay(config.BaseUnit, config.Spread),
	}
}

// NewWithDelay は遅延関数を指定してSlowServiceを作成する
// テストではゼロ遅延や固定遅延のスタブを渡す
func NewWithDelay(fn DelayFunc) *SlowService {
	return &SlowService{delayFn: fn}
}

// DeterministicDelay はIDごとに決定的な擬似ランダム遅延を返すDelayFuncを作る
// 同じIDは常に同じ遅延になるため、実行結果は再現可能
func DeterministicDelay(baseUnit time.Duration, spread int) DelayFunc {
	return func(id int) time.Duration {
		// IDをシードにした1ステップのLCG（乱数列は不要なので展開しない）
		seed := uint64(id)*6364136223846793005 + 1442695040888963407
		steps := int((seed>>33)%uint64(spread)) + 1
		return baseUnit * time.Duration(steps)
	}
}

// Delay はIDに対応する遅延時間を返す（待機はしない）
func (s *SlowService) Delay(id int) time.Duration {
	return s.delayFn(id)
}

// Compute はIDに対応するメッセージを遅延後に返す
// 待機中にコンテキストがキャンセルされた場合はctx.Err()を返す
func (s *SlowService) Compute(ctx context.Context, id int) (message.Message, error) {
	delay := s.delayFn(id)

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return message.Message{}, ctx.Err()
		case <-timer.C:
		}
	}

	return message.New(id, delay, fmt.Sprintf("message-%d", id)), nil
}
