// Package http exposes the FlowDoc workspace as a JSON API.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the identity operations required by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (models.Profile, error)
	Login(ctx context.Context, email, password string) (models.Profile, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.Profile, bool)
	UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (models.Profile, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// AuthHandler handles registration, login and the profile endpoints.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
}

// LoginRequest is the JSON payload of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordRequest is the JSON payload of POST /api/profile/password.
type PasswordRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next"    validate:"required,min=6"`
}

// Register handles POST /api/register and signs the new account in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context()); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Profile handles GET /api/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.AuthService.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, h.Log, service.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PATCH /api/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd service.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}
	p, err := h.AuthService.UpdateProfile(r.Context(), upd)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ChangePassword handles POST /api/profile/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.ChangePassword(r.Context(), req.Current, req.Next); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
