package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig holds configuration for the SQLite translation memory.
type SQLiteConfig struct {
	Path string // Database file, or ":memory:"
	TTL  int    // TTL in seconds (0 = no expiration)
}

// SQLiteCache is a persistent translation memory backed by SQLite.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (and creates if needed) the database at cfg.Path.
func NewSQLiteCache(cfg SQLiteConfig) (*SQLiteCache, error) {
	dsn := ":memory:"
	if cfg.Path != "" && cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if dsn == ":memory:" {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
	}

	c := &SQLiteCache{db: db, now: time.Now}
	if cfg.TTL > 0 {
		c.ttl = time.Duration(cfg.TTL) * time.Second
	}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) initSchema() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS translations (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_translations_updated ON translations(updated_at);
	`)
	return err
}

func (c *SQLiteCache) cutoff() int64 {
	if c.ttl <= 0 {
		return 0
	}
	return c.now().Add(-c.ttl).Unix()
}

// Get retrieves a translation. Database errors are reported as misses.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM translations WHERE key = ? AND updated_at >= ?`,
		key, c.cutoff(),
	).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores or replaces a translation.
func (c *SQLiteCache) Set(ctx context.Context, key string, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translations (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing translation: %w", err)
	}
	return nil
}

// Entries returns all live translations.
func (c *SQLiteCache) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM translations WHERE updated_at >= ?`, c.cutoff())
	if err != nil {
		return nil, fmt.Errorf("listing translations: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

// Prune deletes expired translations and returns how many were removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM translations WHERE updated_at < ?`, c.cutoff())
	if err != nil {
		return 0, fmt.Errorf("pruning translations: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored translations, expired ones included.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Verify SQLiteCache implements ExportableCache
var _ ExportableCache = (*SQLiteCache)(nil)
