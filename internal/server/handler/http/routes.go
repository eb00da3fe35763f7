package http

import (
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the FlowDoc API under /api.
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. WithRequestLogging(logger), which logs every request with its status
//  3. Recoverer
//  4. AllowContentType("application/json") for requests with a body
//
// Prometheus metrics are served on /metrics. Health, account and markdown
// endpoints are public. Everything else
// requires an active session.
func NewRouter(
	authHandler *AuthHandler,
	workspaceHandler *WorkspaceHandler,
	healthHandler *HealthHandler,
	sessions middleware.SessionSource,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Route("/markdown", func(r chi.Router) {
			r.Get("/commands", SlashCommands)
			r.Post("/insert", InsertMarkdown)
			r.Post("/slash", ApplySlash)
		})

		// Protected group: requires a signed-in account
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions))

			r.Get("/profile", authHandler.Profile)
			r.Patch("/profile", authHandler.UpdateProfile)
			r.Post("/profile/password", authHandler.ChangePassword)

			r.Get("/selection", workspaceHandler.Selection)

			r.Get("/projects", workspaceHandler.ListProjects)
			r.Post("/projects", workspaceHandler.CreateProject)
			r.Route("/projects/{projectID}", func(r chi.Router) {
				mountProject(r, workspaceHandler)
			})
		})
	})

	return r
}

func mountProject(r chi.Router, h *WorkspaceHandler) {
	r.Get("/", h.GetProject)
	r.Delete("/", h.DeleteProject)
	r.Patch("/settings", h.UpdateSettings)
	r.Post("/select", h.SelectProject)
	r.Get("/tree", h.Tree)
	r.Get("/roots", h.Roots)

	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Put("/documents/{docID}", h.SaveDocument)
	r.Delete("/documents/{docID}", h.DeleteDocument)

	r.Get("/glossary", h.SearchTerms)
	r.Post("/glossary", h.AddTerm)
	r.Post("/glossary/match", h.MatchTerms)
	r.Put("/glossary/{termID}", h.UpdateTerm)
	r.Delete("/glossary/{termID}", h.DeleteTerm)

	r.Post("/flows", h.CreateSubFlow)
	r.Route("/flows/{flowID}", func(r chi.Router) {
		r.Get("/", h.GetFlow)
		r.Patch("/", h.UpdateFlow)
		r.Delete("/", h.DeleteFlow)
		r.Get("/path", h.FlowPath)
		r.Get("/children", h.FlowChildren)
		r.Post("/move", h.MoveFlow)
		r.Post("/select", h.SelectFlow)
		r.Post("/connect", h.Connect)
		r.Put("/connections", h.UpdateConnections)
		r.Get("/edges", h.Edges)

		r.Post("/nodes", h.AddNode)
		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Patch("/", h.UpdateNode)
			r.Delete("/", h.DeleteNode)
			r.Put("/position", h.MoveNode)
			r.Put("/status", h.SetNodeStatus)
			r.Put("/document", h.SaveNodeDocument)
			r.Post("/images", h.AttachImage)

			r.Post("/metrics", h.AddMetric)
			r.Delete("/metrics/{recordID}", h.RemoveMetric())
			r.Post("/improvements", h.AddImprovement)
			r.Put("/improvements/{recordID}/status", h.UpdateImprovementStatus)
			r.Delete("/improvements/{recordID}", h.RemoveImprovement())
			r.Post("/checklist", h.AddChecklistItem)
			r.Post("/checklist/{recordID}/toggle", h.ToggleChecklistItem)
			r.Delete("/checklist/{recordID}", h.RemoveChecklistItem())
			r.Post("/risks", h.AddRisk)
			r.Delete("/risks/{recordID}", h.RemoveRisk())
		})
	})
}
