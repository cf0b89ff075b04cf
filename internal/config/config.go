// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"video-embed-pipeline/internal/validator"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Streamable StreamableConfig `mapstructure:"streamable"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Content    ContentConfig    `mapstructure:"content"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Debug bool   `mapstructure:"debug"`
}

// StreamableConfig holds upstream lookup API settings.
type StreamableConfig struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// TTL is the freshness tolerance for the embed path: skip the upstream
	// while a cached record has at least this much validity left.
	TTL   time.Duration `mapstructure:"ttl"`
	Retry RetryConfig   `mapstructure:"retry"`
	CB    CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CacheConfig holds durable cache store settings.
type CacheConfig struct {
	// Backend selects where the record table persists between builds.
	Backend string `mapstructure:"backend" json:"backend" validate:"oneof=file redis"`
	// Path is the cache file location for the file backend.
	Path string `mapstructure:"path"`
	// Key is the hash key for the redis backend.
	Key string `mapstructure:"key"`
}

// ContentConfig holds content directory settings for the CLI.
type ContentConfig struct {
	SourceDir string `mapstructure:"source_dir" json:"source_dir" validate:"required"`
	OutputDir string `mapstructure:"output_dir" json:"output_dir" validate:"required"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for the redis cache backend.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// validate checks the sections that would otherwise fail a run halfway
// through a build if left wrong.
func validate(cfg *Config) error {
	val := validator.New()

	if err := val.Validate(cfg.Streamable); err != nil {
		return err
	}
	if err := val.Validate(cfg.Cache); err != nil {
		return err
	}

	return val.Validate(cfg.Content)
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "video-embed-pipeline")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)

	// Streamable defaults
	v.SetDefault("streamable.base_url", "https://api.streamable.com")
	v.SetDefault("streamable.timeout", "10s")
	v.SetDefault("streamable.ttl", "24h")
	// A failed lookup is reported once per build, not retried.
	v.SetDefault("streamable.retry.max_attempts", 0)
	v.SetDefault("streamable.retry.wait_time", "1s")
	v.SetDefault("streamable.retry.max_wait_time", "5s")
	v.SetDefault("streamable.circuit_breaker.max_requests", 3)
	v.SetDefault("streamable.circuit_breaker.interval", "60s")
	v.SetDefault("streamable.circuit_breaker.timeout", "30s")
	v.SetDefault("streamable.circuit_breaker.failure_ratio", 0.5)

	// Cache defaults
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.path", ".cache/streamable-api-results.json")
	v.SetDefault("cache.key", "video-embed:records")

	// Content defaults
	v.SetDefault("content.source_dir", "content")
	v.SetDefault("content.output_dir", "public")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}
