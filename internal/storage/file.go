package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
)

// FileKV keeps one JSON file per key under a directory.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

// NewFileKV creates dir if needed and returns a store rooted at it.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes to a temp file and renames it over the slot so a crash never
// leaves a half-written collection behind.
func (s *FileKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileKV) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs error
	for _, k := range keys {
		if err := os.Remove(s.path(k)); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (s *FileKV) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return err
	}
	return nil
}

func (s *FileKV) Close() error { return nil }
