package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"
	"go.uber.org/zap"
)

const problemContentType = "application/problem+json"

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, p *problems.DefaultProblem) {
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, http.StatusBadRequest, problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(r.URL.Path).
		WithType("validation_error").
		WithDetail(detail))
}

// decode reads a JSON body into v and validates its struct tags. On failure
// it writes a 400 problem and returns false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, r, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			badRequest(w, r, err.Error())
			return false
		}
	}
	return true
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, kind := http.StatusInternalServerError, "internal_error"
	switch {
	case service.IsNotFound(err):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicateEmail):
		status, kind = http.StatusConflict, "duplicate_email"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, kind = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrNotAuthenticated):
		status, kind = http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, service.ErrCycleDetected), errors.Is(err, service.ErrRootFlowDeletion):
		status, kind = http.StatusConflict, "conflict"
	case service.IsValidation(err):
		status, kind = http.StatusBadRequest, "validation_error"
	}

	p := problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(kind)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		p = p.WithDetail("internal error")
	} else {
		p = p.WithDetail(err.Error())
	}
	writeProblem(w, status, p)
}
