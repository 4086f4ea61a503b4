// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables the snapshot cache
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey string `yaml:"gemini_key"`
	GeminiURL string `yaml:"gemini_url"`
	OpenAIKey string `yaml:"openai_key"`

	TextModel          string `yaml:"text_model"`
	OpenAIModel        string `yaml:"openai_model"`
	ImageModel         string `yaml:"image_model"`
	ImageFallbackModel string `yaml:"image_fallback_model"`
	ImageSize          string `yaml:"image_size"`

	ConcurrentLimit int `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type WorkerConfig struct {
	Count int `yaml:"count"` // background image workers
}

type SessionConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"`       // idle time before a session is reaped
	SweepInterval time.Duration `yaml:"sweep_interval"` // how often the reaper runs
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Redis  RedisConfig  `yaml:"redis"`
	AI     AIConfig     `yaml:"ai"`
	Retry   RetryConfig   `yaml:"retry"`
	Worker  WorkerConfig  `yaml:"worker"`
	Session SessionConfig `yaml:"session"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML config at path and applies defaults plus
// environment overrides for secrets (GEMINI_API_KEY, OPENAI_API_KEY).
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env wins for credentials
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.TextModel == "" {
		cfg.AI.TextModel = "gemini-3-flash-preview"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "gemini-3-pro-image-preview"
	}
	if cfg.AI.ImageFallbackModel == "" {
		cfg.AI.ImageFallbackModel = "gemini-2.5-flash-image"
	}
	if cfg.AI.ImageSize == "" {
		cfg.AI.ImageSize = "1K"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.InitialDelay <= 0 {
		cfg.Retry.InitialDelay = time.Second
	}
	if cfg.Worker.Count <= 0 {
		cfg.Worker.Count = 4
	}
	if cfg.Session.MaxIdle <= 0 {
		cfg.Session.MaxIdle = 30 * time.Minute
	}
	if cfg.Session.SweepInterval <= 0 {
		cfg.Session.SweepInterval = 5 * time.Minute
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
