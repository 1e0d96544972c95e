package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ZaguanLabs/xraytl"
)

const (
	// DefaultTargetLang is the language string tables are translated into.
	DefaultTargetLang = "rus"

	// DefaultCacheTTL is the default translation cache TTL in seconds (30 days).
	DefaultCacheTTL = 30 * 24 * 3600

	// DefaultRequestsPerMinute is the default backend request rate.
	DefaultRequestsPerMinute = 60
)

// Config holds all configuration for xraytl.
type Config struct {
	Translation TranslationConfig `mapstructure:"translation"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Anthropic   AnthropicConfig   `mapstructure:"anthropic"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Retry       RetryConfig       `mapstructure:"retry"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// TranslationConfig holds the defaults of a translation run.
type TranslationConfig struct {
	Target          string `mapstructure:"target"`
	Source          string `mapstructure:"source"`
	Backend         string `mapstructure:"backend"` // openai, anthropic or none
	Context         string `mapstructure:"context"`
	Style           string `mapstructure:"style"`
	BatchSize       int    `mapstructure:"batch_size"`
	Workers         int    `mapstructure:"workers"`
	SkipIdentifiers bool   `mapstructure:"skip_identifiers"`
	GlossaryFile    string `mapstructure:"glossary_file"`
}

// OpenAIConfig holds OpenAI-compatible API settings.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// String returns a safe representation of OpenAIConfig with the API key masked.
func (c OpenAIConfig) String() string {
	return fmt.Sprintf("OpenAIConfig{APIKey:%s, Model:%s, BaseURL:%s}", maskAPIKey(c.APIKey), c.Model, c.BaseURL)
}

// AnthropicConfig holds Anthropic Claude API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// String returns a safe representation of AnthropicConfig with the API key masked.
func (c AnthropicConfig) String() string {
	return fmt.Sprintf("AnthropicConfig{APIKey:%s, Model:%s}", maskAPIKey(c.APIKey), c.Model)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// CacheConfig selects and configures the translation cache.
type CacheConfig struct {
	Backend    string `mapstructure:"backend"` // memory, redis, sqlite or none
	TTL        int    `mapstructure:"ttl"`     // seconds, 0 = no expiration
	RedisURL   string `mapstructure:"redis_url"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RetryConfig holds backend retry settings.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

// Backend converts c into the library retry configuration.
func (c RetryConfig) Backend() xraytl.RetryConfig {
	return xraytl.RetryConfig{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.BaseDelay,
		MaxDelay:   c.MaxDelay,
	}
}

// RateLimitConfig holds backend rate limit settings.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	BurstSize         int `mapstructure:"burst_size"`
}

// Backend converts c into the library rate limit configuration.
func (c RateLimitConfig) Backend() xraytl.RateLimitConfig {
	return xraytl.RateLimitConfig{
		RequestsPerMinute: c.RequestsPerMinute,
		BurstSize:         c.BurstSize,
	}
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the default locations and environment
// variables.
func Load() (*Config, error) {
	return load("")
}

// LoadFile reads configuration from path and environment variables. The
// file must exist.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("xraytl")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir(), ".xraytl"))
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("XRAYTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("openai.api_key", "XRAYTL_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("anthropic.api_key", "XRAYTL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("cache.redis_url", "XRAYTL_CACHE_REDIS_URL", "REDIS_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("translation.target", DefaultTargetLang)
	v.SetDefault("translation.source", "")
	v.SetDefault("translation.backend", "openai")
	v.SetDefault("translation.context", "")
	v.SetDefault("translation.style", string(xraytl.StyleNeutral))
	v.SetDefault("translation.batch_size", xraytl.DefaultBatchSize)
	v.SetDefault("translation.workers", 4)
	v.SetDefault("translation.skip_identifiers", false)
	v.SetDefault("translation.glossary_file", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.temperature", 0.3)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.redis_url", "redis://localhost:6379")
	v.SetDefault("cache.key_prefix", "xraytl:")
	v.SetDefault("cache.sqlite_path", filepath.Join(homeDir(), ".xraytl", "memory.db"))

	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.max_delay", 30*time.Second)

	v.SetDefault("rate_limit.requests_per_minute", DefaultRequestsPerMinute)
	v.SetDefault("rate_limit.burst_size", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Translation.Target == "" {
		return fmt.Errorf("translation.target must not be empty")
	}
	switch c.Translation.Backend {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("translation.backend must be openai, anthropic or none, got %q", c.Translation.Backend)
	}
	switch xraytl.TranslationStyle(c.Translation.Style) {
	case xraytl.StyleNeutral, xraytl.StyleDialogue, xraytl.StyleInterface, xraytl.StyleLore:
	default:
		return fmt.Errorf("translation.style %q is not supported", c.Translation.Style)
	}
	if c.Translation.BatchSize <= 0 {
		return fmt.Errorf("translation.batch_size must be greater than 0")
	}
	if c.Translation.Workers <= 0 {
		return fmt.Errorf("translation.workers must be greater than 0")
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url must not be empty for the redis cache")
		}
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path must not be empty for the sqlite cache")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis, sqlite or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be >= 0")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0")
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay (%s) must not be less than retry.base_delay (%s)", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be >= 0")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// APIKey returns the key for the configured translation backend.
func (c *Config) APIKey() string {
	switch c.Translation.Backend {
	case "openai":
		return c.OpenAI.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	}
	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
