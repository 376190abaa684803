// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	RateLimit       int           `yaml:"rate_limit"` // submissions per user per window; 0 disables
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	Provider        string   `yaml:"provider"` // gemini | openai | noop
	GeminiKey       string   `yaml:"gemini_key"`
	GeminiURL       string   `yaml:"gemini_url"`
	OpenAIKey       string   `yaml:"openai_key"`
	OpenAIBaseURL   string   `yaml:"openai_base_url"`
	DefaultModel    string   `yaml:"default_model"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
	Temperature     *float64 `yaml:"temperature"`      // nil until defaulted; 0 is kept
	ConcurrentLimit int      `yaml:"concurrent_limit"` // max concurrent generation streams

	// DisableStreaming uses whole-response calls for gateways without SSE support.
	DisableStreaming bool `yaml:"disable_streaming"`
}

type ChatConfig struct {
	CreditCost             int64         `yaml:"credit_cost"`
	HistoryLimit           int           `yaml:"history_limit"`
	GenerationHistoryLimit int           `yaml:"generation_history_limit"`
	FlushInterval          time.Duration `yaml:"flush_interval"`
	GenerationTimeout      time.Duration `yaml:"generation_timeout"`
}

type WorkerConfig struct {
	Mode         string        `yaml:"mode"` // pool | queue
	Workers      int           `yaml:"workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
	StaleAfter   time.Duration `yaml:"stale_after"` // PENDING messages older than this are failed
	ReapInterval time.Duration `yaml:"reap_interval"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`
	Worker   WorkerConfig   `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RateLimitWindow <= 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		switch {
		case cfg.Runtime.Dev:
			cfg.AI.Provider = "noop"
		case cfg.AI.GeminiKey != "":
			cfg.AI.Provider = "gemini"
		case cfg.AI.OpenAIKey != "":
			cfg.AI.Provider = "openai"
		}
	}
	if cfg.AI.DefaultModel == "" {
		if cfg.AI.Provider == "openai" {
			cfg.AI.DefaultModel = "gpt-4o-mini"
		} else {
			cfg.AI.DefaultModel = "gemini-2.0-flash"
		}
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 8192
	}
	if cfg.AI.Temperature == nil {
		t := 1.0
		cfg.AI.Temperature = &t
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}

	if cfg.Chat.CreditCost <= 0 {
		cfg.Chat.CreditCost = 1
	}
	if cfg.Chat.HistoryLimit <= 0 {
		cfg.Chat.HistoryLimit = 5
	}
	if cfg.Chat.GenerationHistoryLimit <= 0 {
		cfg.Chat.GenerationHistoryLimit = 6
	}
	if cfg.Chat.FlushInterval <= 0 {
		cfg.Chat.FlushInterval = 100 * time.Millisecond
	}
	if cfg.Chat.GenerationTimeout <= 0 {
		cfg.Chat.GenerationTimeout = 2 * time.Minute
	}

	cfg.Worker.Mode = strings.ToLower(strings.TrimSpace(cfg.Worker.Mode))
	if cfg.Worker.Mode == "" {
		cfg.Worker.Mode = "pool"
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 8
	}
	if cfg.Worker.PollInterval <= 0 {
		cfg.Worker.PollInterval = 500 * time.Millisecond
	}
	if cfg.Worker.LockTTL <= 0 {
		cfg.Worker.LockTTL = cfg.Chat.GenerationTimeout + time.Minute
	}
	if cfg.Worker.StaleAfter <= 0 {
		cfg.Worker.StaleAfter = cfg.Worker.LockTTL
	}
	if cfg.Worker.ReapInterval <= 0 {
		cfg.Worker.ReapInterval = time.Minute
	}
}

func (cfg *Config) validate() error {
	switch cfg.Worker.Mode {
	case "pool", "queue":
	default:
		return fmt.Errorf("worker.mode %q is not one of pool|queue", cfg.Worker.Mode)
	}
	if t := *cfg.AI.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("ai.temperature %v is outside [0, 2]", t)
	}
	switch cfg.AI.Provider {
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key is required for provider gemini")
		}
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key is required for provider openai")
		}
	case "noop":
	case "":
		return errors.New("no AI provider configured: set ai.gemini_key or ai.openai_key")
	default:
		return fmt.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}

	// Dev mode runs on in-memory stores.
	if cfg.Runtime.Dev {
		if cfg.Worker.Mode == "queue" {
			return errors.New("worker.mode queue requires a database; not available in dev mode")
		}
		return nil
	}
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
