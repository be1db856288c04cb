// Package main is the entry point for slowmap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slowmap/internal/api"
	"slowmap/internal/bench"
	"slowmap/internal/config"
	"slowmap/internal/logger"
)

var (
	version = "dev"
)

func main() {
	// フラグ定義
	var (
		configFile  = flag.String("config", "", "設定ファイルパス (YAML/JSON)")
		presetName  = flag.String("preset", "", "プリセット名 (quick, baseline, pools, forkjoin, faulty, full)")
		count       = flag.Int("count", 0, "タスク数 (ID 0..N-1)")
		timeout     = flag.Duration("timeout", 0, "プール戦略のタイムアウト (例: 5s, 1m)")
		parallelism = flag.Int("parallelism", 0, "fork/joinの並列度ヒント")
		listPresets = flag.Bool("list-presets", false, "利用可能なプリセットを表示")
		showVersion = flag.Bool("version", false, "バージョンを表示")
		serverMode  = flag.Bool("server", false, "Web UI サーバーモードで起動")
		serverAddr  = flag.String("addr", ":8080", "サーバーアドレス (例: :8080, 0.0.0.0:3000)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `slowmap - Parallel-Map Strategy Comparison over a Simulated Slow Service

Usage:
  slowmap [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # プリセットを実行
  slowmap --preset quick

  # 設定ファイルから実行
  slowmap --config run.yaml

  # フラグでカスタマイズ
  slowmap --preset full --count 200 --timeout 30s

  # プリセット一覧を表示
  slowmap --list-presets

  # Web UIサーバーモードで起動
  slowmap --server

  # カスタムアドレスでサーバー起動
  slowmap --server --addr :3000
`)
	}

	flag.Parse()

	// バージョン表示
	if *showVersion {
		fmt.Printf("slowmap version %s\n", version)
		return
	}

	// プリセット一覧表示
	if *listPresets {
		printPresets()
		return
	}

	// Web UIサーバーモード
	if *serverMode {
		if err := runServer(*serverAddr); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			os.Exit(1)
		}
		return
	}

	// 比較実行の設定の決定
	benchConfig, err := buildBenchConfig(*configFile, *presetName, *count, *timeout, *parallelism)
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}

	// 比較実行
	if err := runComparison(benchConfig); err != nil {
		logger.Error("", "実行エラー: %v", err)
		os.Exit(1)
	}
}

// buildBenchConfig は比較実行の設定を構築する
func buildBenchConfig(
	configFile, presetName string,
	count int, timeout time.Duration, parallelism int,
) (bench.Config, error) {
	var cfg bench.Config

	// 1. 設定ファイルから読み込み
	if configFile != "" {
		fileConfig, err := config.LoadFile(configFile)
		if err != nil {
			return cfg, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		if err := fileConfig.Validate(); err != nil {
			return cfg, fmt.Errorf("設定検証エラー: %w", err)
		}
		cfg, err = fileConfig.ToBenchConfig()
		if err != nil {
			return cfg, fmt.Errorf("設定変換エラー: %w", err)
		}
	} else if presetName != "" {
		// 2. プリセットから読み込み
		preset, ok := bench.GetPreset(presetName)
		if !ok {
			return cfg, fmt.Errorf("不明なプリセット: %s (利用可能: %v)", presetName, bench.ListPresets())
		}
		cfg = preset
	} else {
		// 3. デフォルト（quickプリセット）
		cfg = bench.QuickConfig()
	}

	// フラグでオーバーライド
	if count > 0 {
		cfg.Count = count
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if parallelism > 0 {
		cfg.Parallelism = parallelism
	}

	return cfg, nil
}

// runComparison は比較実行を行う
func runComparison(cfg bench.Config) error {
	fmt.Println("slowmap - Parallel-Map Strategy Comparison")
	fmt.Println("====================================================")
	fmt.Printf("Run: %s\n", cfg.Name)
	fmt.Printf("Tasks: %d, Timeout: %v\n", cfg.Count, cfg.Timeout)
	fmt.Printf("Strategies: %v\n", cfg.Strategies)
	fmt.Printf("Faults: %v\n", cfg.EnableFaults)
	fmt.Println("====================================================")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、実行を終了中...")
		cancel()
	}()

	// 比較実行
	engine := bench.New(cfg)
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	// レポート出力
	fmt.Println(result.Report())

	return nil
}

// printPresets は利用可能なプリセットを表示する
func printPresets() {
	fmt.Println("利用可能なプリセット:")
	fmt.Println()

	for _, name := range bench.ListPresets() {
		cfg, ok := bench.GetPreset(name)
		if !ok {
			continue
		}
		fmt.Printf("  %-12s %s\n", name, cfg.Description)
	}

	fmt.Println()
	fmt.Println("使用例: slowmap --preset quick")
}

// runServer はWeb UIサーバーを起動する
func runServer(addr string) error {
	fmt.Println("slowmap - Web UI Server")
	fmt.Println("========================")
	fmt.Printf("Starting server on http://%s\n", addr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、サーバーを終了中...")
		cancel()
	}()

	server := api.NewServer(addr)
	return server.Start(ctx)
}
