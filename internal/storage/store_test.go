package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/FlowDoc/internal/metrics"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// stubKV lets each test replace the behaviour it cares about.
type stubKV struct {
	MemoryKV
	getFn func(key string) ([]byte, bool, error)
	setFn func(key string, value []byte) error
	delFn func(keys ...string) error
}

func newStubKV() *stubKV {
	return &stubKV{MemoryKV: MemoryKV{slots: map[string][]byte{}}}
}

func (s *stubKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.getFn != nil {
		return s.getFn(key)
	}
	return s.MemoryKV.Get(ctx, key)
}

func (s *stubKV) Set(ctx context.Context, key string, value []byte) error {
	if s.setFn != nil {
		return s.setFn(key, value)
	}
	return s.MemoryKV.Set(ctx, key, value)
}

func (s *stubKV) Delete(ctx context.Context, keys ...string) error {
	if s.delFn != nil {
		return s.delFn(keys...)
	}
	return s.MemoryKV.Delete(ctx, keys...)
}

func TestProjectStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProjectStore(NewMemoryKV(), nil)

	if got := store.Load(ctx); got == nil || len(got) != 0 {
		t.Fatalf("Load on empty store = %#v, want empty non-nil", got)
	}
	in := []models.Project{{ID: "p1", Name: "Ops", Version: "1.0.0", Statuses: []models.Status{}, Flows: []models.Flow{}}}
	if !store.Save(ctx, in) {
		t.Fatal("Save returned false")
	}
	out := store.Load(ctx)
	if len(out) != 1 || out[0].ID != "p1" || out[0].Name != "Ops" {
		t.Errorf("Load = %+v", out)
	}
	if !store.Clear(ctx) {
		t.Fatal("Clear returned false")
	}
	if got := store.Load(ctx); len(got) != 0 {
		t.Errorf("Load after Clear = %+v", got)
	}
}

func TestProjectStore_CorruptDataDegrades(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(context.Background(), ProjectsKey, []byte(`{not json`))

	core, logs := observer.New(zapcore.ErrorLevel)
	store := NewProjectStore(kv, zap.New(core))

	got := store.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("Load = %#v, want empty", got)
	}
	if logs.FilterMessage("failed to load projects").Len() != 1 {
		t.Errorf("expected a load failure log, got %v", logs.All())
	}
}

func TestProjectStore_WriteFailureReportsFalse(t *testing.T) {
	kv := newStubKV()
	kv.setFn = func(string, []byte) error { return errors.New("quota exceeded") }
	store := NewProjectStore(kv, nil)

	if store.Save(context.Background(), []models.Project{{ID: "p1"}}) {
		t.Error("Save should report false when the backend rejects the write")
	}
}

func TestProjectStore_ReadFailureDegrades(t *testing.T) {
	kv := newStubKV()
	kv.getFn = func(string) ([]byte, bool, error) { return nil, false, errors.New("io") }
	store := NewProjectStore(kv, nil)

	if got := store.Load(context.Background()); len(got) != 0 {
		t.Errorf("Load = %+v, want empty", got)
	}
}

func TestAccountStore_Session(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(NewMemoryKV(), nil)

	if _, ok := store.Session(ctx); ok {
		t.Fatal("fresh store must have no session")
	}
	p := models.Profile{ID: "u1", Name: "Ann", Email: "ann@example.com"}
	if err := store.SetSession(ctx, p); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	got, ok := store.Session(ctx)
	if !ok || got.ID != "u1" || got.Email != "ann@example.com" {
		t.Errorf("Session = %+v, %v", got, ok)
	}
	if err := store.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, ok := store.Session(ctx); ok {
		t.Error("session still present after ClearSession")
	}
}

func TestAccountStore_Accounts(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewAccountStore(kv, nil)

	if got := store.Accounts(ctx); len(got) != 0 {
		t.Fatalf("Accounts on empty store = %+v", got)
	}
	accs := []models.Account{{ID: "u1", Email: "a@x.com", PasswordHash: "h"}}
	if err := store.SaveAccounts(ctx, accs); err != nil {
		t.Fatalf("SaveAccounts failed: %v", err)
	}
	if got := store.Accounts(ctx); len(got) != 1 || got[0].PasswordHash != "h" {
		t.Errorf("Accounts = %+v", got)
	}

	_ = kv.Set(ctx, AccountsKey, []byte(`garbage`))
	if got := store.Accounts(ctx); len(got) != 0 {
		t.Errorf("corrupt accounts should degrade to empty, got %+v", got)
	}
}

func TestAccountStore_UnreadableSessionIsAbsent(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(context.Background(), SessionKey, []byte(`"oops"`))
	store := NewAccountStore(kv, nil)
	if _, ok := store.Session(context.Background()); ok {
		t.Error("unreadable session should be treated as absent")
	}
}

func TestAccountStore_SaveAccountsError(t *testing.T) {
	kv := newStubKV()
	kv.setFn = func(string, []byte) error { return errors.New("disk full") }
	store := NewAccountStore(kv, nil)
	err := store.SaveAccounts(context.Background(), nil)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("SaveAccounts error = %v, want ErrStorageUnavailable", err)
	}
}

func TestProjectStore_CountsWrites(t *testing.T) {
	ok := metrics.StorageWrites.WithLabelValues(ProjectsKey, "ok")
	failed := metrics.StorageWrites.WithLabelValues(ProjectsKey, "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	kv := newStubKV()
	s := NewProjectStore(kv, nil)
	s.Save(context.Background(), nil)
	kv.setFn = func(string, []byte) error { return errors.New("quota exceeded") }
	s.Save(context.Background(), nil)

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
}
