package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const mysqlUpsert = `
	INSERT INTO moderation_cache (key_hash, verdict, stored_at)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE
		verdict = VALUES(verdict),
		stored_at = VALUES(stored_at)
`

// MySQLCache is a MySQL implementation of the ResultCache interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, ttl, cleanupFreq time.Duration, logger *zap.Logger, opts ...Option) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	c, err := NewMySQLCacheFromDB(db, ttl, cleanupFreq, logger, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewMySQLCacheFromDB creates the cache table on an open connection
func NewMySQLCacheFromDB(db *sql.DB, ttl, cleanupFreq time.Duration, logger *zap.Logger, opts ...Option) (*MySQLCache, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS moderation_cache (
			key_hash CHAR(64) PRIMARY KEY,
			verdict BOOLEAN NOT NULL,
			stored_at BIGINT NOT NULL,
			INDEX idx_stored_at (stored_at)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLCache{newSQLCache(db, mysqlUpsert, ttl, cleanupFreq, logger, opts)}, nil
}
