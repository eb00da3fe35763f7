package service

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/FlowDoc/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// mockAccountRepo keeps accounts and the session in memory; the Func fields
// override individual calls.
type mockAccountRepo struct {
	accounts []models.Account
	session  *models.Profile

	SaveAccountsFunc func(ctx context.Context, accounts []models.Account) error
	SetSessionFunc   func(ctx context.Context, p models.Profile) error
}

func (m *mockAccountRepo) Accounts(context.Context) []models.Account {
	return append([]models.Account(nil), m.accounts...)
}

func (m *mockAccountRepo) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	if m.SaveAccountsFunc != nil {
		if err := m.SaveAccountsFunc(ctx, accounts); err != nil {
			return err
		}
	}
	m.accounts = append([]models.Account(nil), accounts...)
	return nil
}

func (m *mockAccountRepo) Session(context.Context) (models.Profile, bool) {
	if m.session == nil {
		return models.Profile{}, false
	}
	return *m.session, true
}

func (m *mockAccountRepo) SetSession(ctx context.Context, p models.Profile) error {
	if m.SetSessionFunc != nil {
		if err := m.SetSessionFunc(ctx, p); err != nil {
			return err
		}
	}
	m.session = &p
	return nil
}

func (m *mockAccountRepo) ClearSession(context.Context) error {
	m.session = nil
	return nil
}

func newTestAuth(repo *mockAccountRepo) *AuthService {
	svc := NewAuthService(repo, nil)
	svc.cost = bcrypt.MinCost
	return svc
}

func register(t *testing.T, svc *AuthService, email string) models.Profile {
	t.Helper()
	p, err := svc.Register(context.Background(), RegisterRequest{Name: "Ann", Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("Register(%q) returned error: %v", email, err)
	}
	return p
}

func TestRegister_SetsSessionAndHashes(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)

	p := register(t, svc, " Ann@Example.com ")
	if p.Email != "ann@example.com" {
		t.Errorf("email not normalised: %q", p.Email)
	}
	if repo.session == nil || repo.session.ID != p.ID {
		t.Fatalf("session not set to the new account: %+v", repo.session)
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("accounts = %d; want 1", len(repo.accounts))
	}
	hash := repo.accounts[0].PasswordHash
	if hash == "secret1" || hash == "" {
		t.Errorf("stored credential is not a hash: %q", hash)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")) != nil {
		t.Error("stored hash does not verify the password")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	register(t, svc, "a@x.com")

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "B", Email: "A@x.com", Password: "secret2"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("Register error = %v; want ErrDuplicateEmail", err)
	}
	if len(repo.accounts) != 1 {
		t.Errorf("accounts = %d; want exactly 1", len(repo.accounts))
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuth(&mockAccountRepo{})
	cases := []RegisterRequest{
		{Name: "", Email: "a@x.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@x.com", Password: "123"},
	}
	for _, req := range cases {
		if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Register(%+v) error = %v; want ErrInvalidInput", req, err)
		}
	}
}

func TestRegister_StorageError(t *testing.T) {
	wantErr := errors.New("disk full")
	repo := &mockAccountRepo{
		SaveAccountsFunc: func(context.Context, []models.Account) error { return wantErr },
	}
	svc := newTestAuth(repo)
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Register error = %v; want %v", err, wantErr)
	}
	if repo.session != nil {
		t.Error("session must not be set when the account was not stored")
	}
}

func TestLogin(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	want := register(t, svc, "a@x.com")
	_ = svc.Logout(context.Background())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"ok", "a@x.com", "secret1", nil},
		{"case insensitive email", "A@X.com", "secret1", nil},
		{"wrong password", "a@x.com", "nope", ErrInvalidCredentials},
		{"unknown email", "b@x.com", "secret1", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.session = nil
			p, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login error = %v; want %v", err, tt.wantErr)
				}
				if repo.session != nil {
					t.Error("failed login must not set a session")
				}
				return
			}
			if err != nil {
				t.Fatalf("Login returned error: %v", err)
			}
			if p.ID != want.ID {
				t.Errorf("Login profile = %q; want %q", p.ID, want.ID)
			}
		})
	}
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	register(t, svc, "a@x.com")

	var compared [][]byte
	svc.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	for _, email := range []string{"a@x.com", "nobody@x.com"} {
		compared = nil
		if _, err := svc.Login(context.Background(), email, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q) error = %v; want ErrInvalidCredentials", email, err)
		}
		if len(compared) != 1 {
			t.Fatalf("Login(%q) ran %d hash comparisons; want 1", email, len(compared))
		}
		if cost, err := bcrypt.Cost(compared[0]); err != nil || cost != svc.cost {
			t.Errorf("Login(%q) compared against cost %d (%v); want %d", email, cost, err, svc.cost)
		}
	}
}

func TestLogout_KeepsAccounts(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	register(t, svc, "a@x.com")

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := svc.CurrentUser(context.Background()); ok {
		t.Error("session still active after Logout")
	}
	if len(repo.accounts) != 1 {
		t.Errorf("Logout touched accounts: %d", len(repo.accounts))
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	register(t, svc, "b@x.com")
	_ = svc.Logout(context.Background())
	register(t, svc, "a@x.com")

	name, dept := "Annie", "Ops"
	p, err := svc.UpdateProfile(context.Background(), ProfileUpdate{Name: &name, Department: &dept})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if p.Name != "Annie" || p.Department != "Ops" {
		t.Errorf("profile not merged: %+v", p)
	}
	if repo.session.Name != "Annie" || repo.accounts[1].Name != "Annie" {
		t.Error("update must reach both the account and the session copy")
	}

	taken := "b@x.com"
	if _, err := svc.UpdateProfile(context.Background(), ProfileUpdate{Email: &taken}); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("UpdateProfile to a taken email = %v; want ErrDuplicateEmail", err)
	}
}

func TestUpdateProfile_NotAuthenticated(t *testing.T) {
	svc := newTestAuth(&mockAccountRepo{})
	name := "x"
	if _, err := svc.UpdateProfile(context.Background(), ProfileUpdate{Name: &name}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateProfile error = %v; want ErrNotAuthenticated", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	register(t, svc, "a@x.com")
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "wrong", "newsecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ChangePassword with wrong current = %v", err)
	}
	if err := svc.ChangePassword(ctx, "secret1", "newsecret"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if _, err := svc.Login(ctx, "a@x.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
	if _, err := svc.Login(ctx, "a@x.com", "newsecret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestSeedDemoAccount_Once(t *testing.T) {
	repo := &mockAccountRepo{}
	svc := newTestAuth(repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.SeedDemoAccount(ctx); err != nil {
			t.Fatalf("SeedDemoAccount returned error: %v", err)
		}
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("accounts = %d; want 1", len(repo.accounts))
	}
	if repo.session != nil {
		t.Error("seeding must not sign anyone in")
	}
	if _, err := svc.Login(ctx, DemoEmail, DemoPassword); err != nil {
		t.Errorf("demo login failed: %v", err)
	}
}
