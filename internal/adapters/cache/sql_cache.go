package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"go.uber.org/zap"
)

// sqlCache holds what the SQLite and MySQL caches share. Rows are keyed by
// the SHA-256 of the text and store the verdict with its unix-nano timestamp.
type sqlCache struct {
	db          *sql.DB
	upsertQuery string
	ttl         time.Duration
	logger      *zap.Logger
	cleanupFreq time.Duration
	now         func() time.Time
	stopCh      chan struct{}
	stopped     chan struct{}
	stopOnce    sync.Once
}

func newSQLCache(db *sql.DB, upsertQuery string, ttl, cleanupFreq time.Duration, logger *zap.Logger, opts []Option) *sqlCache {
	o := applyOptions(opts)
	c := &sqlCache{
		db:          db,
		upsertQuery: upsertQuery,
		ttl:         ttl,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		now:         o.now,
		stopCh:      make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go c.startCleanupTask()
	} else {
		close(c.stopped)
	}
	return c
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached verdict for text if it has not expired
func (c *sqlCache) Get(ctx context.Context, text string) (bool, bool) {
	key := cacheKey(text)

	var verdict bool
	var storedAt int64
	err := c.db.QueryRowContext(ctx, `
		SELECT verdict, stored_at
		FROM moderation_cache
		WHERE key_hash = ?
	`, key).Scan(&verdict, &storedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
		}
		return false, false
	}

	entry := core.CacheEntry{Verdict: verdict, StoredAt: time.Unix(0, storedAt)}
	if !entry.Valid(c.now(), c.ttl) {
		if _, err := c.db.ExecContext(ctx, `
			DELETE FROM moderation_cache
			WHERE key_hash = ? AND stored_at = ?
		`, key, storedAt); err != nil {
			c.logger.Warn("Failed to delete expired cache entry", zap.Error(err), zap.String("key", key))
		}
		return false, false
	}

	return entry.Verdict, true
}

// Put stores the verdict for text with the current time
func (c *sqlCache) Put(ctx context.Context, text string, verdict bool) {
	key := cacheKey(text)
	if _, err := c.db.ExecContext(ctx, c.upsertQuery, key, verdict, c.now().UnixNano()); err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	cutoff := c.now().Add(-c.ttl).UnixNano()
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM moderation_cache
		WHERE stored_at < ?
	`, cutoff)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *sqlCache) startCleanupTask() {
	defer close(c.stopped)

	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection.
// Calls after the first are no-ops.
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.stopped
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close cache database", zap.Error(err))
		}
	})
}
