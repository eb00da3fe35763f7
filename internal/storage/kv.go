// Package storage is the persistence adapter: it reads and writes the project
// collection, the accounts table and the session pointer, each as one JSON
// value under a fixed key of a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/FlowDoc/internal/db"
	"github.com/atinyakov/FlowDoc/internal/repository"
	"go.uber.org/zap"
)

// Fixed storage keys.
const (
	ProjectsKey = "flow_knowledge_manager_projects"
	AccountsKey = "users"
	SessionKey  = "currentUser"
)

// ErrStorageUnavailable wraps every backend read or write failure.
var ErrStorageUnavailable = errors.New("storage unavailable")

// KV is a durable key-value slot store.
type KV interface {
	// Get returns the stored value and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the given keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Options tune backend construction.
type Options struct {
	// Log receives backend diagnostics. Nil means no logging.
	Log *zap.Logger
	// TombstoneInterval is how often the postgres backend purges deleted slots.
	TombstoneInterval time.Duration
	// TombstoneRetention is how long deleted slots are kept before purging.
	TombstoneRetention time.Duration
}

// Open selects a backend by DSN scheme:
//
//	file://<dir> or a bare path   JSON files under dir
//	memory://                      in-process map
//	postgres://, postgresql://     kv_slots table
//	redis://, rediss://            redis keys under a prefix
func Open(ctx context.Context, dsn string, opts Options) (KV, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case strings.HasPrefix(dsn, "memory://"):
		return NewMemoryKV(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		conn, err := db.InitPostgres(dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if opts.TombstoneInterval > 0 {
			db.StartTombstoneCleaner(ctx, conn, opts.TombstoneInterval, opts.TombstoneRetention, log)
		}
		return repository.NewPostgresKV(conn), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return NewRedisKV(ctx, dsn)
	default:
		return NewFileKV(strings.TrimPrefix(dsn, "file://"))
	}
}

// Scheme names the backend Open would pick for dsn. It is safe to log,
// unlike the DSN itself.
func Scheme(dsn string) string {
	if i := strings.Index(dsn, "://"); i > 0 {
		return dsn[:i]
	}
	return "file"
}
