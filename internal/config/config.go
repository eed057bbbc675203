package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	AdminAPIKey     string        `yaml:"admin_api_key"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
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

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type GateConfig struct {
	// Teaser truncation speed: words of body text per second of the rule's
	// teaser duration.
	WordsPerSecond float64 `yaml:"words_per_second"`
}

type LimitsConfig struct {
	RedeemAttempts       int           `yaml:"redeem_attempts"`
	RedeemWindow         time.Duration `yaml:"redeem_window"`
	ConflictRetries      int           `yaml:"conflict_retries"`
	ConflictRetryBackoff time.Duration `yaml:"conflict_retry_backoff"`
}

type AIConfig struct {
	OpenAIKey         string `yaml:"openai_key"`
	GeminiKey         string `yaml:"gemini_key"`
	DefaultModel      string `yaml:"default_model"`
	FreeTierTokens    int    `yaml:"free_tier_tokens"`
	PremiumTierTokens int    `yaml:"premium_tier_tokens"`
	MaxQuestionTokens int    `yaml:"max_question_tokens"`
}

type SweeperConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Gate     GateConfig     `yaml:"gate"`
	Limits   LimitsConfig   `yaml:"limits"`
	AI       AIConfig       `yaml:"ai"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Gate.WordsPerSecond <= 0 {
		cfg.Gate.WordsPerSecond = 2.5
	}
	if cfg.Limits.RedeemAttempts <= 0 {
		cfg.Limits.RedeemAttempts = 10
	}
	if cfg.Limits.RedeemWindow <= 0 {
		cfg.Limits.RedeemWindow = time.Minute
	}
	if cfg.Limits.ConflictRetries <= 0 {
		cfg.Limits.ConflictRetries = 3
	}
	if cfg.Limits.ConflictRetryBackoff <= 0 {
		cfg.Limits.ConflictRetryBackoff = 25 * time.Millisecond
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.FreeTierTokens <= 0 {
		cfg.AI.FreeTierTokens = 256
	}
	if cfg.AI.PremiumTierTokens <= 0 {
		cfg.AI.PremiumTierTokens = 1024
	}
	if cfg.AI.MaxQuestionTokens <= 0 {
		cfg.AI.MaxQuestionTokens = 512
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = 10 * time.Minute
	}
}
