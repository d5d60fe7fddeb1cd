package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "chainblog:moderation:"

// connectionTimeout bounds the initial ping
const connectionTimeout = 5 * time.Second

// RedisCache is a ResultCache shared between processes; expiry is left to redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisCache connects to redis and verifies the connection
func NewRedisCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns the cached verdict for text if it has not expired
func (c *RedisCache) Get(ctx context.Context, text string) (bool, bool) {
	key := redisKeyPrefix + cacheKey(text)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
		}
		return false, false
	}
	return val == "1", true
}

// Put stores the verdict for text for ttl
func (c *RedisCache) Put(ctx context.Context, text string, verdict bool) {
	key := redisKeyPrefix + cacheKey(text)
	val := "0"
	if verdict {
		val = "1"
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Stop closes the redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close redis client", zap.Error(err))
	}
}
