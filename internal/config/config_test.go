package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Translation: TranslationConfig{
			Target:    "rus",
			Backend:   "openai",
			Style:     "neutral",
			BatchSize: 50,
			Workers:   4,
		},
		Cache:   CacheConfig{Backend: "memory"},
		Retry:   RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xraytl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rus", cfg.Translation.Target)
	assert.Equal(t, "openai", cfg.Translation.Backend)
	assert.Equal(t, "neutral", cfg.Translation.Style)
	assert.Equal(t, 50, cfg.Translation.BatchSize)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, DefaultRequestsPerMinute, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestConfigEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XRAYTL_TRANSLATION_TARGET", "ukr")
	t.Setenv("XRAYTL_CACHE_BACKEND", "none")
	t.Setenv("XRAYTL_RETRY_BASE_DELAY", "250ms")
	t.Setenv("OPENAI_API_KEY", "sk-test-12345")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-67890")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ukr", cfg.Translation.Target)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, "sk-test-12345", cfg.OpenAI.APIKey)
	assert.Equal(t, "sk-ant-test-67890", cfg.Anthropic.APIKey)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XRAYTL_TRANSLATION_TARGET", "")
	path := writeConfig(t, `
translation:
  target: ukr
  backend: anthropic
  style: dialogue
  context: S.T.A.L.K.E.R.
cache:
  backend: sqlite
  sqlite_path: /tmp/xraytl-test.db
logging:
  format: json
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ukr", cfg.Translation.Target)
	assert.Equal(t, "anthropic", cfg.Translation.Backend)
	assert.Equal(t, "dialogue", cfg.Translation.Style)
	assert.Equal(t, "S.T.A.L.K.E.R.", cfg.Translation.Context)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Translation.Workers)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeConfig(t, "translation:\n  backend: deepl\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translation.backend")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty target", func(c *Config) { c.Translation.Target = "" }, "translation.target"},
		{"unknown backend", func(c *Config) { c.Translation.Backend = "deepl" }, "translation.backend"},
		{"unknown style", func(c *Config) { c.Translation.Style = "pirate" }, "translation.style"},
		{"zero batch", func(c *Config) { c.Translation.BatchSize = 0 }, "translation.batch_size"},
		{"zero workers", func(c *Config) { c.Translation.Workers = 0 }, "translation.workers"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis" }, "cache.redis_url"},
		{"sqlite without path", func(c *Config) { c.Cache.Backend = "sqlite" }, "cache.sqlite_path"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -1 }, "cache.ttl"},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, "retry.max_retries"},
		{"delays swapped", func(c *Config) { c.Retry.MaxDelay = time.Millisecond }, "retry.max_delay"},
		{"negative rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = -5 }, "rate_limit.requests_per_minute"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	require.NoError(t, validConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigStringMasksKeys(t *testing.T) {
	openai := OpenAIConfig{APIKey: "sk-proj-1234567890abcdef", Model: "gpt-4o-mini"}
	s := openai.String()
	assert.Contains(t, s, "sk-p")
	assert.NotContains(t, s, "1234567890")

	anthropic := AnthropicConfig{APIKey: "short"}
	assert.Contains(t, anthropic.String(), "***")
}

func TestConfigAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = "openai-key"
	cfg.Anthropic.APIKey = "anthropic-key"

	assert.Equal(t, "openai-key", cfg.APIKey())
	cfg.Translation.Backend = "anthropic"
	assert.Equal(t, "anthropic-key", cfg.APIKey())
	cfg.Translation.Backend = "none"
	assert.Empty(t, cfg.APIKey())
}

func TestRetryAndRateLimitConversion(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{RequestsPerMinute: 30, BurstSize: 5}

	assert.Equal(t, 3, cfg.Retry.Backend().MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Retry.Backend().MaxDelay)
	assert.Equal(t, 30, cfg.RateLimit.Backend().RequestsPerMinute)
	assert.Equal(t, 5, cfg.RateLimit.Backend().BurstSize)
}
