package http

import (
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/go-chi/chi/v5"
)

// CreateProjectRequest is the payload of POST /api/projects.
type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

// ListProjects handles GET /api/projects.
func (h *WorkspaceHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Workspace.Projects())
}

// CreateProject handles POST /api/projects.
func (h *WorkspaceHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Workspace.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProject handles GET /api/projects/{projectID}.
func (h *WorkspaceHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Workspace.Project(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{projectID}.
func (h *WorkspaceHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings handles PATCH /api/projects/{projectID}/settings.
func (h *WorkspaceHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.ProjectSettings
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Workspace.UpdateSettings(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Selection handles GET /api/selection.
func (h *WorkspaceHandler) Selection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Workspace.Selection())
}

// SelectProject handles POST /api/projects/{projectID}/select.
func (h *WorkspaceHandler) SelectProject(w http.ResponseWriter, r *http.Request) {
	sel, err := h.Workspace.SelectProject(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// SelectFlow handles POST /api/projects/{projectID}/flows/{flowID}/select.
func (h *WorkspaceHandler) SelectFlow(w http.ResponseWriter, r *http.Request) {
	sel, err := h.Workspace.SelectFlow(chi.URLParam(r, "projectID"), chi.URLParam(r, "flowID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
