package faults

import (
	"context"
	"errors"
	"sync"
	"time"

	"slowmap/internal/events"
	"slowmap/internal/logger"
	"slowmap/internal/message"
	"slowmap/internal/runner"
)

// ErrInjected は注入された計算エラー
var ErrInjected = errors.New("injected fault")

// FaultType は注入する障害の種類を表す
type FaultType int

const (
	// FaultError は計算をエラーで失敗させる
	FaultError FaultType = iota
	// FaultDelay は計算前に追加の遅延を挿入する
	FaultDelay
	// FaultStall はコンテキストが終了するまで計算を停止させる
	FaultStall
)

func (f FaultType) String() string {
	switch f {
	case FaultError:
		return "error"
	case FaultDelay:
		return "delay"
	case FaultStall:
		return "stall"
	default:
		return "unknown"
	}
}

// Rule は特定のIDに適用する障害規則
// Every > 0 のとき、id % Every == Offset % Every のIDに適用される
type Rule struct {
	Type   FaultType
	Every  int
	Offset int
	Extra  time.Duration // FaultDelay時の追加遅延
}

// matches は規則がIDに適用されるかを判定する
func (r Rule) matches(id int) bool {
	if r.Every <= 0 {
		return false
	}
	return id%r.Every == r.Offset%r.Every
}

// Stats は障害注入の統計情報
type Stats struct {
	TotalInjected uint64            `json:"total_injected"`
	ByType        map[string]uint64 `json:"injected_by_type"`
}

// Injector はcompute関数に決定的に障害を注入する
// 規則はIDのみから適用可否が決まるため、注入結果は再現可能
type Injector struct {
	rules    []Rule
	eventBus *events.Bus

	mu             sync.Mutex
	injectedCount  uint64
	injectedByType map[FaultType]uint64
}

// New は新しいInjectorを作成する
func New(rules ...Rule) *Injector {
	return &Injector{
		rules:          rules,
		injectedByType: make(map[FaultType]uint64),
	}
}

// SetEventBus はイベントバスを設定する
func (in *Injector) SetEventBus(bus *events.Bus) {
	in.eventBus = bus
}

// publishEvent はイベントを発行する
func (in *Injector) publishEvent(event events.Event) {
	if in.eventBus != nil {
		in.eventBus.Publish(event)
	}
}

// record は注入を記録する
func (in *Injector) record(id int, faultType FaultType) {
	in.mu.Lock()
	in.injectedCount++
	in.injectedByType[faultType]++
	in.mu.Unlock()

	logger.Debug("faults", "injected %s fault into id %d", faultType, id)
	in.publishEvent(events.NewFaultInjectedEvent(id, faultType.String()))
}

// Wrap はcompute関数を障害注入付きでラップする
// 規則に一致しないIDはそのまま内側の関数に渡される
func (in *Injector) Wrap(next runner.ComputeFunc) runner.ComputeFunc {
	return func(ctx context.Context, id int) (message.Message, error) {
		for _, rule := range in.rules {
			if !rule.matches(id) {
				continue
			}

			switch rule.Type {
			case FaultError:
				in.record(id, FaultError)
				return message.Message{}, ErrInjected

			case FaultDelay:
				in.record(id, FaultDelay)
				timer := time.NewTimer(rule.Extra)
				select {
				case <-ctx.Done():
					timer.Stop()
					return message.Message{}, ctx.Err()
				case <-timer.C:
				}

			case FaultStall:
				in.record(id, FaultStall)
				<-ctx.Done()
				return message.Message{}, ctx.Err()
			}
		}

		return next(ctx, id)
	}
}

// InjectedCount は注入回数を返す
func (in *Injector) InjectedCount() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.injectedCount
}

// Stats は注入統計を返す
func (in *Injector) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()

	byType := make(map[string]uint64)
	for t, count := range in.injectedByType {
		byType[t.String()] = count
	}

	return Stats{
		TotalInjected: in.injectedCount,
		ByType:        byType,
	}
}
