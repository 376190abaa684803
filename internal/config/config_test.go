//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  url: postgres://localhost/chat
redis:
  url: localhost:6379
ai:
  gemini_key: key
`), false)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}

	if cfg.AI.Provider != "gemini" {
		t.Errorf("expected provider to be inferred as 'gemini', got %q", cfg.AI.Provider)
	}
	if cfg.AI.DefaultModel != "gemini-2.0-flash" {
		t.Errorf("unexpected default model %q", cfg.AI.DefaultModel)
	}
	if cfg.Chat.CreditCost != 1 {
		t.Errorf("expected credit cost 1, got %d", cfg.Chat.CreditCost)
	}
	if cfg.Chat.HistoryLimit != 5 || cfg.Chat.GenerationHistoryLimit != 6 {
		t.Errorf("unexpected history limits %d/%d", cfg.Chat.HistoryLimit, cfg.Chat.GenerationHistoryLimit)
	}
	if cfg.Chat.FlushInterval != 100*time.Millisecond {
		t.Errorf("expected flush interval 100ms, got %s", cfg.Chat.FlushInterval)
	}
	if cfg.Worker.Mode != "pool" || cfg.Worker.Workers != 8 {
		t.Errorf("unexpected worker defaults: %+v", cfg.Worker)
	}
	if cfg.Worker.LockTTL <= cfg.Chat.GenerationTimeout {
		t.Errorf("lock ttl %s must outlive generation timeout %s", cfg.Worker.LockTTL, cfg.Chat.GenerationTimeout)
	}
	if cfg.Worker.StaleAfter != cfg.Worker.LockTTL || cfg.Worker.ReapInterval != time.Minute {
		t.Errorf("unexpected reaper defaults: stale_after=%s reap_interval=%s", cfg.Worker.StaleAfter, cfg.Worker.ReapInterval)
	}
	if cfg.Redis.TTL != time.Hour {
		t.Errorf("expected redis ttl to default to 1h, got %s", cfg.Redis.TTL)
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 1 {
		t.Errorf("expected temperature to default to 1, got %v", cfg.AI.Temperature)
	}
}

func TestParse_Temperature(t *testing.T) {
	t.Run("should keep an explicit zero", func(t *testing.T) {
		cfg, err := Parse([]byte(`ai: {openai_key: k, temperature: 0}
database: {url: x}
redis: {url: y}
`), false)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0 {
			t.Fatalf("expected temperature 0, got %v", cfg.AI.Temperature)
		}
	})

	t.Run("should keep a configured value", func(t *testing.T) {
		cfg, err := Parse([]byte(`ai: {openai_key: k, temperature: 0.3}
database: {url: x}
redis: {url: y}
`), false)
		if err != nil {
			t.Fatal(err)
		}
		if *cfg.AI.Temperature != 0.3 {
			t.Fatalf("expected temperature 0.3, got %v", *cfg.AI.Temperature)
		}
	})

	t.Run("should reject a negative value", func(t *testing.T) {
		_, err := Parse([]byte(`ai: {openai_key: k, temperature: -1}
database: {url: x}
redis: {url: y}
`), false)
		if err == nil || !strings.Contains(err.Error(), "ai.temperature") {
			t.Fatalf("expected a temperature error, got %v", err)
		}
	})
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		dev     bool
		wantErr string
	}{
		{
			name:    "missing provider",
			yaml:    "database: {url: x}\nredis: {url: y}\n",
			wantErr: "no AI provider",
		},
		{
			name:    "missing database",
			yaml:    "ai: {openai_key: k}\nredis: {url: y}\n",
			wantErr: "database.url",
		},
		{
			name:    "bad worker mode",
			yaml:    "ai: {openai_key: k}\nworker: {mode: cron}\n",
			wantErr: "worker.mode",
		},
		{
			name:    "queue in dev",
			yaml:    "worker: {mode: queue}\n",
			dev:     true,
			wantErr: "requires a database",
		},
		{
			name: "dev needs nothing",
			yaml: "log: {level: debug}\n",
			dev:  true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml), tc.dev)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("chat:\n  credit_cost: 3\n  flush_interval: 250ms\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chat.CreditCost != 3 {
		t.Errorf("expected credit cost 3, got %d", cfg.Chat.CreditCost)
	}
	if cfg.Chat.FlushInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.Chat.FlushInterval)
	}
	if cfg.AI.Provider != "noop" {
		t.Errorf("expected dev mode to default to noop provider, got %q", cfg.AI.Provider)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml"), true); err == nil {
		t.Fatal("expected error for missing file")
	}
}
