// Package service implements the FlowDoc business rules: identity and session,
// the project workspace, and the flow, node, connection, document and glossary
// operations that mutate it.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/FlowDoc/internal/metrics"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Demo account seeded when enabled in config.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
	demoID       = "demo-user-001"
	demoName     = "Demo User"
	defaultRole  = "user"
)

// AccountRepository defines the persistence operations required by AuthService.
type AccountRepository interface {
	// Accounts returns every registered account; empty when unreadable.
	Accounts(ctx context.Context) []models.Account
	// SaveAccounts rewrites the accounts table.
	SaveAccounts(ctx context.Context, accounts []models.Account) error
	// Session returns the signed-in profile.
	Session(ctx context.Context) (models.Profile, bool)
	// SetSession replaces the session pointer.
	SetSession(ctx context.Context, p models.Profile) error
	// ClearSession drops the session pointer.
	ClearSession(ctx context.Context) error
}

// RegisterRequest carries sign-up input.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name       *string `json:"name,omitempty"       validate:"omitempty,min=1"`
	Email      *string `json:"email,omitempty"      validate:"omitempty,email"`
	Avatar     *string `json:"avatar,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

// AuthService registers accounts and manages the single active session.
type AuthService struct {
	repo     AccountRepository
	validate *validator.Validate
	log      *zap.Logger
	cost     int
	compare  func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService over repo. log may be nil.
func NewAuthService(repo AccountRepository, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
		cost:     bcrypt.DefaultCost,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unknownAccountHash is compared against when no account matches, so a
// missing email costs the same as a wrong password.
func (s *AuthService) unknownAccountHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("flowdoc-no-such-account"), s.cost)
	})
	return s.dummyHash
}

// Register creates an account, stores only its bcrypt hash and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (models.Profile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return models.Profile{}, opErr("register", "", invalid("%v", err))
	}

	accounts := s.repo.Accounts(ctx)
	for _, a := range accounts {
		if normalizeEmail(a.Email) == req.Email {
			return models.Profile{}, opErr("register", req.Email, ErrDuplicateEmail)
		}
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return models.Profile{}, opErr("register", req.Email, err)
	}
	acc := models.Account{
		ID:           util.NewID("user"),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		Role:         defaultRole,
	}
	if err := s.repo.SaveAccounts(ctx, append(accounts, acc)); err != nil {
		return models.Profile{}, opErr("register", req.Email, err)
	}

	p := acc.Profile()
	if err := s.repo.SetSession(ctx, p); err != nil {
		return models.Profile{}, opErr("register", req.Email, err)
	}
	s.log.Info("account registered", zap.String("account_id", acc.ID))
	return p, nil
}

// Login signs in the account matching email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Profile, error) {
	email = normalizeEmail(email)
	var match *models.Account
	accounts := s.repo.Accounts(ctx)
	for i := range accounts {
		if normalizeEmail(accounts[i].Email) == email {
			match = &accounts[i]
			break
		}
	}
	if match == nil {
		_ = s.compare(s.unknownAccountHash(), []byte(password))
	} else if s.compare([]byte(match.PasswordHash), []byte(password)) == nil {
		p := match.Profile()
		if err := s.repo.SetSession(ctx, p); err != nil {
			return models.Profile{}, opErr("login", email, err)
		}
		metrics.AuthAttempts.WithLabelValues("success").Inc()
		s.log.Info("signed in", zap.String("account_id", match.ID))
		return p, nil
	}
	metrics.AuthAttempts.WithLabelValues("failure").Inc()
	return models.Profile{}, opErr("login", email, ErrInvalidCredentials)
}

// Logout clears the session. Accounts are untouched.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return opErr("logout", "", err)
	}
	return nil
}

// CurrentUser returns the signed-in profile.
func (s *AuthService) CurrentUser(ctx context.Context) (models.Profile, bool) {
	return s.repo.Session(ctx)
}

// UpdateProfile merges upd into the signed-in account and its session copy.
func (s *AuthService) UpdateProfile(ctx context.Context, upd ProfileUpdate) (models.Profile, error) {
	if err := s.validate.Struct(upd); err != nil {
		return models.Profile{}, opErr("update profile", "", invalid("%v", err))
	}
	accounts, i, err := s.signedIn(ctx, "update profile")
	if err != nil {
		return models.Profile{}, err
	}
	acc := &accounts[i]

	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		for j, a := range accounts {
			if j != i && normalizeEmail(a.Email) == email {
				return models.Profile{}, opErr("update profile", email, ErrDuplicateEmail)
			}
		}
		acc.Email = email
	}
	if upd.Name != nil {
		acc.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil {
		acc.Avatar = *upd.Avatar
	}
	if upd.Department != nil {
		acc.Department = *upd.Department
	}
	if upd.Position != nil {
		acc.Position = *upd.Position
	}

	if err := s.repo.SaveAccounts(ctx, accounts); err != nil {
		return models.Profile{}, opErr("update profile", acc.ID, err)
	}
	p := acc.Profile()
	if err := s.repo.SetSession(ctx, p); err != nil {
		return models.Profile{}, opErr("update profile", acc.ID, err)
	}
	return p, nil
}

// ChangePassword re-hashes the signed-in account's secret after checking current.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	if len(next) < 6 {
		return opErr("change password", "", invalid("password must be at least 6 characters"))
	}
	accounts, i, err := s.signedIn(ctx, "change password")
	if err != nil {
		return err
	}
	if s.compare([]byte(accounts[i].PasswordHash), []byte(current)) != nil {
		return opErr("change password", accounts[i].ID, ErrInvalidCredentials)
	}
	hash, err := s.hash(next)
	if err != nil {
		return opErr("change password", accounts[i].ID, err)
	}
	accounts[i].PasswordHash = hash
	if err := s.repo.SaveAccounts(ctx, accounts); err != nil {
		return opErr("change password", accounts[i].ID, err)
	}
	return nil
}

// SeedDemoAccount registers the demo account once. The session is not touched.
func (s *AuthService) SeedDemoAccount(ctx context.Context) error {
	accounts := s.repo.Accounts(ctx)
	for _, a := range accounts {
		if normalizeEmail(a.Email) == DemoEmail {
			return nil
		}
	}
	hash, err := s.hash(DemoPassword)
	if err != nil {
		return opErr("seed demo", DemoEmail, err)
	}
	demo := models.Account{
		ID:           demoID,
		Name:         demoName,
		Email:        DemoEmail,
		PasswordHash: hash,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:         defaultRole,
		Department:   "Systems Development",
		Position:     "Engineer",
	}
	if err := s.repo.SaveAccounts(ctx, append(accounts, demo)); err != nil {
		return opErr("seed demo", DemoEmail, err)
	}
	s.log.Info("demo account initialized")
	return nil
}

func (s *AuthService) signedIn(ctx context.Context, op string) ([]models.Account, int, error) {
	p, ok := s.repo.Session(ctx)
	if !ok {
		return nil, -1, opErr(op, "", ErrNotAuthenticated)
	}
	accounts := s.repo.Accounts(ctx)
	for i := range accounts {
		if accounts[i].ID == p.ID {
			return accounts, i, nil
		}
	}
	return nil, -1, opErr(op, p.ID, ErrNotAuthenticated)
}
