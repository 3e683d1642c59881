// Package cache keeps recently extracted feed records in SQLite so that
// repeated catalog runs do not refetch every feed.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultTTL is how long a cached feed record stays fresh
const DefaultTTL = time.Hour

// FetchFunc represents a function that fetches data from an external source
type FetchFunc[T any] func() (T, error)

// DB manages the SQLite database connection for caching
type DB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Open opens (creating if needed) the cache database at dbPath.
// A non-positive ttl means DefaultTTL.
func Open(dbPath string, ttl time.Duration) (*DB, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(feedCacheSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create cache table: %w", err), closeErr)
	}

	return &DB{
		db:   db,
		path: dbPath,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the database connection
func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get retrieves a fresh cached value.
// Returns the cached data, whether it was found, and any error
func (c *DB) Get(key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var data string
	var cachedAt time.Time
	err := c.db.QueryRow(`SELECT data, cached_at FROM feed_cache WHERE cache_key = ?`, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	if age := c.now().Sub(cachedAt); age > c.ttl {
		slog.Debug("Cache expired", "key", key, "age", age)
		return "", false, nil
	}

	return data, true, nil
}

// Set stores a value in the cache
func (c *DB) Set(key, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`INSERT OR REPLACE INTO feed_cache (cache_key, data, cached_at) VALUES (?, ?, ?)`,
		key, data, c.now())
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// ClearExpired removes entries older than the TTL and returns how many were removed
func (c *DB) ClearExpired() (int64, error) {
	return c.deleteWhere(`DELETE FROM feed_cache WHERE cached_at < ?`, c.now().Add(-c.ttl))
}

// ClearAll removes every entry and returns how many were removed
func (c *DB) ClearAll() (int64, error) {
	return c.deleteWhere(`DELETE FROM feed_cache`)
}

func (c *DB) deleteWhere(query string, args ...any) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("Cache entries removed", "table", feedCacheTable, "rows_deleted", rows)
	return rows, nil
}

// GetOrFetch returns the cached value for key, or calls fetchFunc and
// caches its result. Failed fetches are never cached. A nil cache always
// fetches. The boolean reports whether the value came from the cache.
func GetOrFetch[T any](c *DB, key string, fetchFunc FetchFunc[T]) (T, bool, error) {
	if c == nil {
		data, err := fetchFunc()
		return data, false, err
	}

	cached, found, err := c.Get(key)
	if err != nil {
		slog.Warn("Cache lookup failed, fetching directly", "key", key, "error", err)
	}
	if found {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "key", key)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "key", key, "error", err)
	}

	slog.Debug("Cache miss, fetching data", "key", key)
	data, err := fetchFunc()
	if err != nil {
		return data, false, err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "key", key, "error", err)
		return data, false, nil
	}
	if err := c.Set(key, string(jsonData)); err != nil {
		// Caching failure shouldn't stop the catalog
		slog.Warn("Failed to cache data", "key", key, "error", err)
	}

	return data, false, nil
}
