package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"slowmap/internal/bench"
	"slowmap/internal/faults"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTempConfig(t, "run.yaml", `
run:
  name: my-run
  description: test comparison
  count: 40
  timeout: 8s
  parallelism: 4
  strategies:
    - sequential
    - fork_join
  service:
    base_unit: 2ms
    spread: 20
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Run.Name != "my-run" {
		t.Errorf("expected name my-run, got %s", cfg.Run.Name)
	}
	if cfg.Run.Count != 40 {
		t.Errorf("expected count 40, got %d", cfg.Run.Count)
	}
	if len(cfg.Run.Strategies) != 2 {
		t.Errorf("expected 2 strategies, got %d", len(cfg.Run.Strategies))
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTempConfig(t, "run.json", `{
  "run": {
    "name": "json-run",
    "count": 10,
    "strategies": ["sequential"]
  }
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Run.Name != "json-run" {
		t.Errorf("expected name json-run, got %s", cfg.Run.Name)
	}
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	path := writeTempConfig(t, "run.toml", "count = 10")

	if _, err := LoadFile(path); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "bad.yaml", "run: [unclosed")

	if _, err := LoadFile(path); err == nil {
		t.Error("expected YAML parse error")
	}
}

func TestToBenchConfig(t *testing.T) {
	cfg := &FileConfig{
		Run: RunConfig{
			Name:        "converted",
			Count:       30,
			Timeout:     "3s",
			Parallelism: 6,
			Strategies:  []string{"Sequential", "FIXED_POOL"},
			Service: ServiceConfig{
				BaseUnit: "2ms",
				Spread:   25,
			},
			Faults: FaultsConfig{
				Enabled: true,
				Rules: []RuleEntry{
					{Type: "error", Every: 10},
					{Type: "delay", Every: 5, Offset: 2, Extra: "15ms"},
				},
			},
		},
	}

	bc, err := cfg.ToBenchConfig()
	if err != nil {
		t.Fatalf("ToBenchConfig failed: %v", err)
	}

	if bc.Name != "converted" {
		t.Errorf("expected name converted, got %s", bc.Name)
	}
	if bc.Count != 30 {
		t.Errorf("expected count 30, got %d", bc.Count)
	}
	if bc.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", bc.Timeout)
	}
	if bc.BaseUnit != 2*time.Millisecond {
		t.Errorf("expected base unit 2ms, got %v", bc.BaseUnit)
	}

	want := []bench.Strategy{bench.StrategySequential, bench.StrategyFixedPool}
	if len(bc.Strategies) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(bc.Strategies))
	}
	for i, s := range want {
		if bc.Strategies[i] != s {
			t.Errorf("expected strategy %s at %d, got %s", s, i, bc.Strategies[i])
		}
	}

	if !bc.EnableFaults {
		t.Error("expected faults enabled")
	}
	if len(bc.FaultRules) != 2 {
		t.Fatalf("expected 2 fault rules, got %d", len(bc.FaultRules))
	}
	if bc.FaultRules[1].Type != faults.FaultDelay || bc.FaultRules[1].Extra != 15*time.Millisecond {
		t.Errorf("unexpected second rule: %+v", bc.FaultRules[1])
	}
}

func TestToBenchConfigDefaults(t *testing.T) {
	cfg := &FileConfig{}

	bc, err := cfg.ToBenchConfig()
	if err != nil {
		t.Fatalf("ToBenchConfig failed: %v", err)
	}

	defaults := bench.DefaultConfig()
	if bc.Count != defaults.Count {
		t.Errorf("expected default count %d, got %d", defaults.Count, bc.Count)
	}
	if len(bc.Strategies) != len(defaults.Strategies) {
		t.Errorf("expected default strategies, got %v", bc.Strategies)
	}
}

func TestToBenchConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		run  RunConfig
	}{
		{"bad timeout", RunConfig{Timeout: "not-a-duration"}},
		{"bad base unit", RunConfig{Service: ServiceConfig{BaseUnit: "fast"}}},
		{"bad strategy", RunConfig{Strategies: []string{"quantum"}}},
		{"bad fault type", RunConfig{Faults: FaultsConfig{Rules: []RuleEntry{{Type: "explode", Every: 1}}}}},
		{"bad fault extra", RunConfig{Faults: FaultsConfig{Rules: []RuleEntry{{Type: "delay", Every: 1, Extra: "soon"}}}}},
	}

	for _, tt := range tests {
		cfg := &FileConfig{Run: tt.run}
		if _, err := cfg.ToBenchConfig(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := &FileConfig{Run: RunConfig{Count: 10}}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	tests := []struct {
		name string
		run  RunConfig
	}{
		{"negative count", RunConfig{Count: -1}},
		{"negative parallelism", RunConfig{Parallelism: -2}},
		{"negative spread", RunConfig{Service: ServiceConfig{Spread: -1}}},
		{"negative every", RunConfig{Faults: FaultsConfig{Rules: []RuleEntry{{Every: -1}}}}},
	}

	for _, tt := range tests {
		cfg := &FileConfig{Run: tt.run}
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
