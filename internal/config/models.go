package config

import (
	"fmt"
	"time"
)

// LLMConfig selects the model provider
type LLMConfig struct {
	Provider string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	ModelName       string
	BaseURL         string
	Timeout         time.Duration
	MaxTokens       int
	Temperature     float32
	TopP            float32
	SafetyThreshold string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	ModelName   string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ModerationConfig tunes classification and content generation
type ModerationConfig struct {
	MaxRetries        int
	RetryDelay        time.Duration
	Detailed          bool
	MaxTextSize       int
	RequestsPerMinute int
	AllowedAuthors    []string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CacheConfig selects and sizes the verdict cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	Capacity         int
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	Redis            RedisConfig
}

// LedgerConfig selects where campaigns are read from and written to
type LedgerConfig struct {
	Type            string
	SnapshotPath    string
	RPCURL          string
	ContractAddress string
	ChainID         int64
	CallTimeout     time.Duration
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	ListenAddress   string
	ShutdownTimeout time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GeminiAPIKey reads the Gemini key; called per request so a key added
// after startup is picked up
func (c *Config) GeminiAPIKey() string {
	return c.GetString("gemini.api_key")
}

// OpenAIAPIKey reads the OpenAI key at call time
func (c *Config) OpenAIAPIKey() string {
	return c.GetString("openai.api_key")
}

// LedgerPrivateKey reads the transaction signing key at call time
func (c *Config) LedgerPrivateKey() string {
	return c.GetString("ledger.private_key")
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() (GeminiConfig, error) {
	timeout, err := c.GetDuration("gemini.timeout")
	if err != nil {
		return GeminiConfig{}, err
	}
	return GeminiConfig{
		ModelName:       c.GetString("gemini.model_name"),
		BaseURL:         c.GetString("gemini.base_url"),
		Timeout:         timeout,
		MaxTokens:       c.GetInt("gemini.max_tokens"),
		Temperature:     float32(c.GetFloat64("gemini.temperature")),
		TopP:            float32(c.GetFloat64("gemini.top_p")),
		SafetyThreshold: c.GetString("gemini.safety_threshold"),
	}, nil
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetModeration returns the moderation configuration
func (c *Config) GetModeration() (ModerationConfig, error) {
	delay, err := c.GetDuration("moderation.retry_delay")
	if err != nil {
		return ModerationConfig{}, err
	}
	maxRetries := c.GetInt("moderation.max_retries")
	if maxRetries < 0 {
		return ModerationConfig{}, fmt.Errorf("moderation.max_retries must not be negative, got %d", maxRetries)
	}
	return ModerationConfig{
		MaxRetries:        maxRetries,
		RetryDelay:        delay,
		Detailed:          c.GetBool("moderation.detailed"),
		MaxTextSize:       c.GetInt("moderation.max_text_size"),
		RequestsPerMinute: c.GetInt("moderation.requests_per_minute"),
		AllowedAuthors:    c.GetStringSlice("moderation.allowed_authors"),
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		Capacity:         c.GetInt("cache.capacity"),
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		Redis: RedisConfig{
			Address:  c.GetString("cache.redis.address"),
			Password: c.GetString("cache.redis.password"),
			DB:       c.GetInt("cache.redis.db"),
		},
	}, nil
}

// GetLedger returns the ledger configuration
func (c *Config) GetLedger() (LedgerConfig, error) {
	timeout, err := c.GetDuration("ledger.call_timeout")
	if err != nil {
		return LedgerConfig{}, err
	}
	return LedgerConfig{
		Type:            c.GetString("ledger.type"),
		SnapshotPath:    c.GetString("ledger.snapshot_path"),
		RPCURL:          c.GetString("ledger.rpc_url"),
		ContractAddress: c.GetString("ledger.contract_address"),
		ChainID:         c.GetInt64("ledger.chain_id"),
		CallTimeout:     timeout,
	}, nil
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: timeout,
	}, nil
}
