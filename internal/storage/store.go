package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atinyakov/FlowDoc/internal/metrics"
	"github.com/atinyakov/FlowDoc/internal/models"
	"go.uber.org/zap"
)

// ProjectStore reads and writes the whole project collection. Failures are
// logged and absorbed: loads degrade to an empty collection, saves report false.
type ProjectStore struct {
	kv  KV
	log *zap.Logger
}

// NewProjectStore wraps kv. log may be nil.
func NewProjectStore(kv KV, log *zap.Logger) *ProjectStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectStore{kv: kv, log: log.With(zap.String("slot", ProjectsKey))}
}

// Load returns the stored projects, or an empty list on missing or corrupt data.
func (s *ProjectStore) Load(ctx context.Context) []models.Project {
	projects := []models.Project{}
	if err := getJSON(ctx, s.kv, ProjectsKey, &projects); err != nil {
		s.log.Error("failed to load projects", zap.Error(err))
		return []models.Project{}
	}
	return projects
}

// Save rewrites the collection and reports whether it was stored.
func (s *ProjectStore) Save(ctx context.Context, projects []models.Project) bool {
	if projects == nil {
		projects = []models.Project{}
	}
	err := setJSON(ctx, s.kv, ProjectsKey, projects)
	metrics.StorageWrites.WithLabelValues(ProjectsKey, metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("failed to save projects", zap.Error(err), zap.Int("count", len(projects)))
		return false
	}
	return true
}

// Clear removes the collection.
func (s *ProjectStore) Clear(ctx context.Context) bool {
	if err := s.kv.Delete(ctx, ProjectsKey); err != nil {
		s.log.Error("failed to clear projects", zap.Error(err))
		return false
	}
	return true
}

// AccountStore holds the accounts table and the session pointer.
type AccountStore struct {
	kv  KV
	log *zap.Logger
}

// NewAccountStore wraps kv. log may be nil.
func NewAccountStore(kv KV, log *zap.Logger) *AccountStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountStore{kv: kv, log: log}
}

// Accounts returns the accounts table; unreadable data degrades to empty.
func (s *AccountStore) Accounts(ctx context.Context) []models.Account {
	accounts := []models.Account{}
	if err := getJSON(ctx, s.kv, AccountsKey, &accounts); err != nil {
		s.log.Error("failed to load accounts", zap.Error(err))
		return []models.Account{}
	}
	return accounts
}

// SaveAccounts rewrites the accounts table.
func (s *AccountStore) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	err := setJSON(ctx, s.kv, AccountsKey, accounts)
	metrics.StorageWrites.WithLabelValues(AccountsKey, metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("failed to save accounts", zap.Error(err))
		return err
	}
	return nil
}

// Session returns the active profile, if any.
func (s *AccountStore) Session(ctx context.Context) (models.Profile, bool) {
	var p models.Profile
	data, ok, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		s.log.Error("failed to load session", zap.Error(err))
		return p, false
	}
	if !ok {
		return p, false
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		s.log.Warn("discarding unreadable session", zap.Error(err))
		return models.Profile{}, false
	}
	return p, true
}

// SetSession points the session at p.
func (s *AccountStore) SetSession(ctx context.Context, p models.Profile) error {
	if err := setJSON(ctx, s.kv, SessionKey, p); err != nil {
		s.log.Error("failed to save session", zap.Error(err))
		return err
	}
	return nil
}

// ClearSession drops the session pointer; accounts are untouched.
func (s *AccountStore) ClearSession(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		s.log.Error("failed to clear session", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func getJSON(ctx context.Context, kv KV, key string, dst any) error {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func setJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageUnavailable, key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}
