package message

import (
	"fmt"
	"sort"
	"time"
)

// Message はSlowServiceの1回の呼び出し結果を表す不変の値
type Message struct {
	ID      int
	Delay   time.Duration
	Payload string
}

// New は新しいMessageを作成する
func New(id int, delay time.Duration, payload string) Message {
	return Message{
		ID:      id,
		Delay:   delay,
		Payload: payload,
	}
}

// Equal はフィールド単位で等価比較する
func (m Message) Equal(other Message) bool {
	return m.ID == other.ID && m.Delay == other.Delay && m.Payload == other.Payload
}

// Less は遅延昇順の順序を定義する（同遅延はID昇順）
func (m Message) Less(other Message) bool {
	if m.Delay != other.Delay {
		return m.Delay < other.Delay
	}
	return m.ID < other.ID
}

func (m Message) String() string {
	return fmt.Sprintf("message{id: %d, delay: %v, payload: %q}", m.ID, m.Delay, m.Payload)
}

// SortByDelay はメッセージを遅延昇順にソートする
// ソート後、末尾の要素が最も遅いリクエストになる
func SortByDelay(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Less(msgs[j])
	})
}

// Slowest はソート済みスライスの最も遅い要素を返す
func Slowest(sorted []Message) (Message, bool) {
	if len(sorted) == 0 {
		return Message{}, false
	}
	return sorted[len(sorted)-1], true
}
