package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	moderation, err := cfg.GetModeration()
	require.NoError(t, err)
	assert.Equal(t, 2, moderation.MaxRetries)
	assert.Equal(t, 5*time.Second, moderation.RetryDelay)
	assert.True(t, moderation.Detailed)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.True(t, cache.Enabled)
	assert.Equal(t, time.Hour, cache.TTL)
	assert.Equal(t, 1024, cache.Capacity)

	gemini, err := cfg.GetGemini()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, gemini.Timeout)
	assert.Empty(t, cfg.GeminiAPIKey())

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHAINBLOG_GEMINI_API_KEY", "test-key")
	t.Setenv("CHAINBLOG_CACHE_TTL", "15m")

	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "test-key", cfg.GeminiAPIKey())
	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cache.TTL)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai
moderation:
  max_retries: 1
  retry_delay: 2s
  allowed_authors:
    - "0x52908400098527886E0F7030069857D2E4169EE7"
cache:
  type: redis
  redis:
    address: redis:6379
`), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.GetLLM().Provider)

	moderation, err := cfg.GetModeration()
	require.NoError(t, err)
	assert.Equal(t, 1, moderation.MaxRetries)
	assert.Equal(t, 2*time.Second, moderation.RetryDelay)
	assert.Equal(t, []string{"0x52908400098527886E0F7030069857D2E4169EE7"}, moderation.AllowedAuthors)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, "redis:6379", cache.Redis.Address)
}

func TestInvalidValues(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	cfg.Set("cache.ttl", "an hour")
	_, err := cfg.GetCache()
	assert.Error(t, err)

	cfg.Set("moderation.max_retries", -1)
	_, err = cfg.GetModeration()
	assert.Error(t, err)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
