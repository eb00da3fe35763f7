package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
	"go.uber.org/zap"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	profile     models.Profile
	signedIn    bool
	registerErr error
	loginErr    error
	passwordErr error
}

func (f *fakeAuthService) Register(ctx context.Context, req service.RegisterRequest) (models.Profile, error) {
	if f.registerErr != nil {
		return models.Profile{}, f.registerErr
	}
	return models.Profile{ID: "u1", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (models.Profile, error) {
	if f.loginErr != nil {
		return models.Profile{}, f.loginErr
	}
	f.signedIn = true
	return f.profile, nil
}

func (f *fakeAuthService) Logout(ctx context.Context) error {
	f.signedIn = false
	return nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context) (models.Profile, bool) {
	return f.profile, f.signedIn
}

func (f *fakeAuthService) UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (models.Profile, error) {
	if upd.Name != nil {
		f.profile.Name = *upd.Name
	}
	return f.profile, nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, current, next string) error {
	return f.passwordErr
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request body",
		},
		{
			name:           "bad email",
			body:           `{"name":"Ann","email":"nope","password":"secret1"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "Email",
		},
		{
			name:           "short password",
			body:           `{"name":"Ann","email":"ann@example.com","password":"123"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "Password",
		},
		{
			name:           "duplicate email",
			body:           `{"name":"Ann","email":"ann@example.com","password":"secret1"}`,
			service:        &fakeAuthService{registerErr: service.ErrDuplicateEmail},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "duplicate_email",
		},
		{
			name:           "storage failure",
			body:           `{"name":"Ann","email":"ann@example.com","password":"secret1"}`,
			service:        &fakeAuthService{registerErr: errors.New("disk full")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "created",
			body:           `{"name":"Ann","email":"ann@example.com","password":"secret1"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"email":"ann@example.com"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service, Log: zap.NewNop()}

			h.Register(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeAuthService
		expectedCode int
	}{
		{"missing password", `{"email":"a@x.com"}`, &fakeAuthService{}, http.StatusBadRequest},
		{"wrong credentials", `{"email":"a@x.com","password":"x"}`, &fakeAuthService{loginErr: service.ErrInvalidCredentials}, http.StatusUnauthorized},
		{"ok", `{"email":"a@x.com","password":"x"}`, &fakeAuthService{profile: models.Profile{ID: "u1"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service, Log: zap.NewNop()}

			h.Login(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_ProfileRequiresSession(t *testing.T) {
	h := &AuthHandler{AuthService: &fakeAuthService{}, Log: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.Profile(rec, httptest.NewRequest("GET", "/api/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != problemContentType {
		t.Errorf("expected problem content type, got %q", ct)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		expectedCode int
	}{
		{"too short", `{"current":"demo1234","next":"abc"}`, nil, http.StatusBadRequest},
		{"wrong current", `{"current":"nope00","next":"abcdef"}`, service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"changed", `{"current":"demo1234","next":"abcdef"}`, nil, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandler{AuthService: &fakeAuthService{passwordErr: tt.err}, Log: zap.NewNop()}
			rec := httptest.NewRecorder()
			h.ChangePassword(rec, httptest.NewRequest("POST", "/api/profile/password", bytes.NewBufferString(tt.body)))
			if rec.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}
