package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite provides a SQLite-based Store that survives restarts.
type SQLite struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewSQLite opens the SQLite database at the given file path and ensures the
// cache table is created.
func NewSQLite(filePath string, ttl time.Duration) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}

	// For a cache, WAL mode is generally better for concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode on sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON cache (expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLite{db: db, ttl: ttl}, nil
}

// Get retrieves an item from the cache. Expired rows are deleted and reported as a miss.
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var item struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := `SELECT value, expires_at FROM cache WHERE key = ?`
	if err := c.db.GetContext(ctx, &item, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get item from cache: %w", err)
	}

	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		_ = c.Delete(ctx, key)
		return nil, ErrMiss
	}

	return item.Value, nil
}

// Set adds an item to the cache with a specific TTL (time-to-live).
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	query := `INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`
	if _, err := c.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	return nil
}

// Delete removes an item from the cache.
func (c *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete item from cache: %w", err)
	}
	return nil
}

// Clear removes every cached row.
func (c *SQLite) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (c *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at > 0 AND expires_at < ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (c *SQLite) Close() error {
	return c.db.Close()
}
