// Package repository provides a PostgreSQL-backed slot store for the
// project, account and session collections.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresKV keeps each named slot as one row of kv_slots. Deletes are soft:
// the row is flagged and later purged by the tombstone cleaner.
type PostgresKV struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresKV creates a PostgresKV using the provided *sql.DB.
// db must be a valid connection with the kv_slots table in place.
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{DB: db}
}

// Get returns the value stored under key. The boolean is false when the slot
// does not exist or has been deleted.
func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM kv_slots WHERE key = $1 AND deleted = false
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key, reviving it if it was deleted.
func (s *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_slots (key, value, updated_at, deleted)
		VALUES ($1, $2, $3, false)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at,
			deleted = false
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Set %s: %w", key, err)
	}
	return nil
}

// Delete flags every listed key as deleted.
func (s *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
		UPDATE kv_slots SET deleted = true, updated_at = $2 WHERE key = ANY($1)
	`, pq.Array(keys), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresKV) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *PostgresKV) Close() error {
	return s.DB.Close()
}
