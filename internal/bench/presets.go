package bench

import (
	"time"

	"slowmap/internal/faults"
)

// QuickConfig はクイックテスト用設定を返す
// 短時間での動作確認用
func QuickConfig() Config {
	return Config{
		Name:        "quick",
		Description: "Quick comparison for verification",
		Count:       16,
		Timeout:     5 * time.Second,
		Strategies:  []Strategy{StrategySequential, StrategyFixedPool, StrategyForkJoin},
		BaseUnit:    time.Millisecond,
		Spread:      50,
	}
}

// BaselineConfig は逐次実行のみの基準計測設定を返す
func BaselineConfig() Config {
	return Config{
		Name:        "baseline",
		Description: "Sequential baseline measurement",
		Count:       50,
		Strategies:  []Strategy{StrategySequential},
		BaseUnit:    5 * time.Millisecond,
		Spread:      100,
	}
}

// PoolsConfig はプールポリシー3種の比較設定を返す
func PoolsConfig() Config {
	return Config{
		Name:        "pools",
		Description: "Compare fixed, per-task, and stealing pool policies",
		Count:       100,
		Timeout:     30 * time.Second,
		Strategies:  []Strategy{StrategyFixedPool, StrategyPerTaskPool, StrategyStealingPool},
		BaseUnit:    5 * time.Millisecond,
		Spread:      100,
	}
}

// ForkJoinConfig は分割統治戦略の計測設定を返す
func ForkJoinConfig() Config {
	return Config{
		Name:        "forkjoin",
		Description: "Fork/join divide-and-conquer against the fixed pool",
		Count:       100,
		Timeout:     30 * time.Second,
		Parallelism: 50,
		Strategies:  []Strategy{StrategyFixedPool, StrategyForkJoin},
		BaseUnit:    5 * time.Millisecond,
		Spread:      100,
	}
}

// FaultyConfig は障害注入付きの設定を返す
// 一部IDを失敗させてall-or-nothingの失敗経路を観察する
func FaultyConfig() Config {
	return Config{
		Name:         "faulty",
		Description:  "Fault injection run exercising failure paths",
		Count:        50,
		Timeout:      10 * time.Second,
		Strategies:   []Strategy{StrategySequential, StrategyFixedPool, StrategyForkJoin},
		BaseUnit:     time.Millisecond,
		Spread:       50,
		EnableFaults: true,
		FaultRules: []faults.Rule{
			{Type: faults.FaultDelay, Every: 10, Offset: 3, Extra: 50 * time.Millisecond},
			{Type: faults.FaultError, Every: 25, Offset: 13},
		},
	}
}

// FullConfig は全戦略の比較設定を返す
func FullConfig() Config {
	return Config{
		Name:        "full",
		Description: "All strategies over the default workload",
		Count:       100,
		Timeout:     60 * time.Second,
		Strategies:  AllStrategies(),
		BaseUnit:    10 * time.Millisecond,
		Spread:      100,
	}
}

// GetPreset は名前からプリセット設定を取得する
func GetPreset(name string) (Config, bool) {
	presets := map[string]func() Config{
		"quick":    QuickConfig,
		"baseline": BaselineConfig,
		"pools":    PoolsConfig,
		"forkjoin": ForkJoinConfig,
		"faulty":   FaultyConfig,
		"full":     FullConfig,
	}

	if fn, ok := presets[name]; ok {
		return fn(), true
	}
	return Config{}, false
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{"quick", "baseline", "pools", "forkjoin", "faulty", "full"}
}
