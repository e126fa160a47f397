package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteCache is a file-backed Cache, the concrete backing spec.md §6.5
// leaves as an implementation choice. One row per (subject, key); value is
// nullable to preserve the cached-None distinction.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if absent) a SQLite cache file at path and
// ensures its schema exists.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	// A single writer connection avoids SQLITE_BUSY under the worker pool's
	// concurrent cache writes; WAL + busy_timeout absorb the rest.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("cache: failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Warn("cache: failed to set journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logger.Warn("cache: failed to set synchronous=NORMAL", zap.Error(err))
	}

	c := &SQLiteCache{db: db, logger: logger}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("cache: opened", zap.String("path", path))
	return c, nil
}

func (c *SQLiteCache) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		subject       TEXT NOT NULL,
		key           TEXT NOT NULL,
		value         TEXT,
		has_value     INTEGER NOT NULL,
		elapsed_nanos INTEGER NOT NULL,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (subject, key)
	);
	`
	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("cache: create schema: %w", err)
	}
	return nil
}

// Read implements Cache. has_value distinguishes a cached nil (hit, value
// nil) from no row at all (miss).
func (c *SQLiteCache) Read(subject, key string) (bool, *string, error) {
	hit, value, _, err := c.readWithElapsed(subject, key)
	return hit, value, err
}

// readWithElapsed implements cache.elapsedReader.
func (c *SQLiteCache) readWithElapsed(subject, key string) (bool, *string, time.Duration, error) {
	var value sql.NullString
	var hasValue int
	var elapsedNanos int64
	row := c.db.QueryRow(
		`SELECT value, has_value, elapsed_nanos FROM cache_entries WHERE subject = ? AND key = ?`,
		subject, key,
	)
	switch err := row.Scan(&value, &hasValue, &elapsedNanos); {
	case err == sql.ErrNoRows:
		return false, nil, 0, nil
	case err != nil:
		return false, nil, 0, fmt.Errorf("cache: read (%q,%q): %w", subject, key, err)
	}
	elapsed := time.Duration(elapsedNanos)
	if hasValue == 0 {
		return true, nil, elapsed, nil
	}
	v := value.String
	return true, &v, elapsed, nil
}

// Write implements Cache via an upsert, matching spec.md §5's
// "concurrent writers of the same key perform last-writer-wins".
func (c *SQLiteCache) Write(subject, key string, value *string, elapsed time.Duration) error {
	hasValue := 0
	var sqlValue sql.NullString
	if value != nil {
		hasValue = 1
		sqlValue = sql.NullString{String: *value, Valid: true}
	}
	_, err := c.db.Exec(
		`INSERT INTO cache_entries (subject, key, value, has_value, elapsed_nanos, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (subject, key) DO UPDATE SET
		   value = excluded.value,
		   has_value = excluded.has_value,
		   elapsed_nanos = excluded.elapsed_nanos,
		   updated_at = excluded.updated_at`,
		subject, key, sqlValue, hasValue, elapsed.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("cache: write (%q,%q): %w", subject, key, err)
	}
	return nil
}

// Close implements Cache.
func (c *SQLiteCache) Close() error {
	c.logger.Debug("cache: closing")
	return c.db.Close()
}
