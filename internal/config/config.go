package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slowmap/internal/bench"
	"slowmap/internal/faults"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Run RunConfig `yaml:"run" json:"run"`
}

// RunConfig は比較実行の設定
type RunConfig struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Count       int      `yaml:"count" json:"count"`
	Timeout     string   `yaml:"timeout" json:"timeout"`
	Parallelism int      `yaml:"parallelism" json:"parallelism"`
	Strategies  []string `yaml:"strategies" json:"strategies"`

	Service ServiceConfig `yaml:"service" json:"service"`
	Faults  FaultsConfig  `yaml:"faults" json:"faults"`
}

// ServiceConfig は遅延サービスの設定
type ServiceConfig struct {
	BaseUnit string `yaml:"base_unit" json:"base_unit"`
	Spread   int    `yaml:"spread" json:"spread"`
}

// FaultsConfig は障害注入の設定
type FaultsConfig struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Rules   []RuleEntry `yaml:"rules" json:"rules"`
}

// RuleEntry は障害規則1件の設定
type RuleEntry struct {
	Type   string `yaml:"type" json:"type"`
	Every  int    `yaml:"every" json:"every"`
	Offset int    `yaml:"offset" json:"offset"`
	Extra  string `yaml:"extra" json:"extra"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToBenchConfig はFileConfigをbench.Configに変換する
func (f *FileConfig) ToBenchConfig() (bench.Config, error) {
	rc := f.Run

	// デフォルト値の設定
	config := bench.DefaultConfig()

	if rc.Name != "" {
		config.Name = rc.Name
	}
	if rc.Description != "" {
		config.Description = rc.Description
	}
	if rc.Count > 0 {
		config.Count = rc.Count
	}
	if rc.Timeout != "" {
		d, err := time.ParseDuration(rc.Timeout)
		if err != nil {
			return config, fmt.Errorf("invalid timeout: %w", err)
		}
		config.Timeout = d
	}
	if rc.Parallelism > 0 {
		config.Parallelism = rc.Parallelism
	}
	if len(rc.Strategies) > 0 {
		strategies, err := parseStrategies(rc.Strategies)
		if err != nil {
			return config, err
		}
		config.Strategies = strategies
	}

	// Service設定
	if rc.Service.BaseUnit != "" {
		d, err := time.ParseDuration(rc.Service.BaseUnit)
		if err != nil {
			return config, fmt.Errorf("invalid base_unit: %w", err)
		}
		config.BaseUnit = d
	}
	if rc.Service.Spread > 0 {
		config.Spread = rc.Service.Spread
	}

	// Faults設定
	config.EnableFaults = rc.Faults.Enabled
	if len(rc.Faults.Rules) > 0 {
		rules, err := parseFaultRules(rc.Faults.Rules)
		if err != nil {
			return config, err
		}
		config.FaultRules = rules
	}

	return config, nil
}

// parseStrategies は文字列の戦略名をパースする
func parseStrategies(names []string) ([]bench.Strategy, error) {
	var strategies []bench.Strategy

	for _, name := range names {
		strategy, ok := bench.ParseStrategy(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("unknown strategy: %s", name)
		}
		strategies = append(strategies, strategy)
	}

	return strategies, nil
}

// parseFaultRules は障害規則の設定をパースする
func parseFaultRules(entries []RuleEntry) ([]faults.Rule, error) {
	var rules []faults.Rule

	for _, entry := range entries {
		rule := faults.Rule{
			Every:  entry.Every,
			Offset: entry.Offset,
		}

		switch strings.ToLower(entry.Type) {
		case "error":
			rule.Type = faults.FaultError
		case "delay":
			rule.Type = faults.FaultDelay
		case "stall":
			rule.Type = faults.FaultStall
		default:
			return nil, fmt.Errorf("unknown fault type: %s", entry.Type)
		}

		if entry.Extra != "" {
			d, err := time.ParseDuration(entry.Extra)
			if err != nil {
				return nil, fmt.Errorf("invalid fault extra duration: %w", err)
			}
			rule.Extra = d
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	rc := f.Run

	if rc.Count < 0 {
		return fmt.Errorf("count must be non-negative")
	}

	if rc.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative")
	}

	if rc.Service.Spread < 0 {
		return fmt.Errorf("service.spread must be non-negative")
	}

	for i, rule := range rc.Faults.Rules {
		if rule.Every < 0 {
			return fmt.Errorf("faults.rules[%d].every must be non-negative", i)
		}
	}

	return nil
}
