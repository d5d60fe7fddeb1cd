package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/chainblog/internal/adapters/cache"
	"github.com/mikey/chainblog/internal/config"
	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultCache creates a cache based on the configuration. It returns
// nil when caching is disabled.
func (f *CacheFactory) CreateResultCache() (core.ResultCache, error) {
	cacheConfig, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}
	if !cacheConfig.Enabled {
		f.logger.Info("Verdict cache disabled")
		return nil, nil
	}

	f.logger.Info("Creating verdict cache",
		zap.String("type", cacheConfig.Type),
		zap.Duration("ttl", cacheConfig.TTL))

	switch cacheConfig.Type {
	case "memory":
		return cache.NewMemoryCache(cacheConfig.TTL, cacheConfig.Capacity, f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheConfig.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheConfig.SQLitePath, cacheConfig.TTL, cacheConfig.CleanupFrequency, f.logger)
	case "mysql":
		return cache.NewMySQLCache(cacheConfig.MySQLDSN, cacheConfig.TTL, cacheConfig.CleanupFrequency, f.logger)
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Address:  cacheConfig.Redis.Address,
			Password: cacheConfig.Redis.Password,
			DB:       cacheConfig.Redis.DB,
		}, cacheConfig.TTL, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheConfig.Type)
	}
}
