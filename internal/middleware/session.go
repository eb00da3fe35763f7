// Package middleware provides HTTP middlewares for session gating and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/moogar0880/problems"
)

type ctxKey string

const profileKey ctxKey = "profile"

const problemContentType = "application/problem+json"

// SessionSource reports the signed-in profile.
type SessionSource interface {
	CurrentUser(ctx context.Context) (models.Profile, bool)
}

// RequireSession rejects requests with 401 unless a session is active, and
// stores the signed-in profile in the request context.
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := src.CurrentUser(r.Context())
			if !ok {
				prob := problems.NewStatusProblem(http.StatusUnauthorized).
					WithInstance(r.URL.Path).
					WithDetail("sign in first")
				w.Header().Set("Content-Type", problemContentType)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write(mustJSON(prob))
				return
			}
			ctx := context.WithValue(r.Context(), profileKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFromContext returns the profile stored by RequireSession.
func ProfileFromContext(ctx context.Context) (models.Profile, bool) {
	p, ok := ctx.Value(profileKey).(models.Profile)
	return p, ok
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}
