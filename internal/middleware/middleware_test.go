package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSessions struct {
	profile models.Profile
	ok      bool
}

func (f fakeSessions) CurrentUser(context.Context) (models.Profile, bool) {
	return f.profile, f.ok
}

// dummyHandler records whether it ran and the context it saw.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusTeapot)
}

func TestRequireSession_NoSession(t *testing.T) {
	dummy := &dummyHandler{}
	h := RequireSession(fakeSessions{})(dummy)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if dummy.called {
		t.Error("next handler must not run without a session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var body struct {
		Status   int    `json:"status"`
		Instance string `json:"instance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("problem body is not JSON: %v", err)
	}
	if body.Status != http.StatusUnauthorized || body.Instance != "/api/projects" {
		t.Errorf("unexpected problem body %+v", body)
	}
}

func TestMustJSON_FallsBackOnError(t *testing.T) {
	if got := string(mustJSON(make(chan int))); got != "{}" {
		t.Errorf("mustJSON(chan) = %q, want {}", got)
	}
}

func TestRequireSession_StoresProfile(t *testing.T) {
	dummy := &dummyHandler{}
	p := models.Profile{ID: "u1", Email: "a@x.com"}
	h := RequireSession(fakeSessions{profile: p, ok: true})(dummy)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if !dummy.called {
		t.Fatal("expected next handler to run")
	}
	got, ok := ProfileFromContext(dummy.ctx)
	if !ok || got.ID != "u1" {
		t.Errorf("ProfileFromContext = %+v, %v", got, ok)
	}
}

func TestProfileFromContext_Empty(t *testing.T) {
	if _, ok := ProfileFromContext(context.Background()); ok {
		t.Error("expected no profile in bare context")
	}
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := WithRequestLogging(zap.New(core))(&dummyHandler{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/login", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/login" || fields["method"] != http.MethodPost {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", fields["status"], http.StatusTeapot)
	}
}

func TestWithRequestLogging_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithRequestLogging(zap.NewNop()))
	r.Get("/api/projects/{projectID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/p-1", nil))

	if got := latencySamples(t, "/api/projects/{projectID}"); got == 0 {
		t.Error("expected latency to be recorded under the route pattern")
	}
}

func latencySamples(t *testing.T, route string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "flowdoc_api_latency_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == route {
					return m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}
