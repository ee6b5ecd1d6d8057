package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store is a SQLite-backed cache for lookups worth surviving a
// process restart, such as resolved title metadata. Values are
// opaque bytes; callers handle their own encoding.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over db. Init must be called before use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the backing table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lookup_cache (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("cache init: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key.
// Returns nil, false if not found or expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	var value string
	var expiresAt time.Time

	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM lookup_cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)

	if err != nil || time.Now().After(expiresAt) {
		return nil, false
	}

	return []byte(value), true
}

// Set stores a value with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lookup_cache (key, value, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached value.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM lookup_cache WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM lookup_cache WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}
