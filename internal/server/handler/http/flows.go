package http

import (
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/go-chi/chi/v5"
)

// CreateFlowRequest is the payload of POST /api/projects/{projectID}/flows.
type CreateFlowRequest struct {
	ParentID string `json:"parentId" validate:"required"`
	Name     string `json:"name"     validate:"required"`
}

// MoveFlowRequest re-parents a flow; an empty parentId makes it a root.
type MoveFlowRequest struct {
	ParentID string `json:"parentId"`
}

// ConnectRequest links two nodes.
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// ConnectionsRequest replaces the connection table.
type ConnectionsRequest struct {
	Connections []models.Connection `json:"connections"`
}

func flowParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "projectID"), chi.URLParam(r, "flowID")
}

// CreateSubFlow handles POST /api/projects/{projectID}/flows.
func (h *WorkspaceHandler) CreateSubFlow(w http.ResponseWriter, r *http.Request) {
	var req CreateFlowRequest
	if !decode(w, r, &req) {
		return
	}
	projectID := chi.URLParam(r, "projectID")
	id, err := h.Workspace.CreateSubFlow(r.Context(), projectID, req.ParentID, req.Name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	f, err := h.Workspace.Flow(projectID, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// GetFlow handles GET /api/projects/{projectID}/flows/{flowID}.
func (h *WorkspaceHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	f, err := h.Workspace.Flow(flowParams(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// UpdateFlow handles PATCH /api/projects/{projectID}/flows/{flowID}.
func (h *WorkspaceHandler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	var req service.FlowUpdate
	if !decode(w, r, &req) {
		return
	}
	projectID, flowID := flowParams(r)
	f, err := h.Workspace.UpdateFlow(r.Context(), projectID, flowID, req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFlow handles DELETE /api/projects/{projectID}/flows/{flowID}.
func (h *WorkspaceHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	projectID, flowID := flowParams(r)
	if err := h.Workspace.DeleteFlow(r.Context(), projectID, flowID); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlowPath handles GET /api/projects/{projectID}/flows/{flowID}/path.
func (h *WorkspaceHandler) FlowPath(w http.ResponseWriter, r *http.Request) {
	path, err := h.Workspace.Path(flowParams(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// FlowChildren handles GET /api/projects/{projectID}/flows/{flowID}/children.
func (h *WorkspaceHandler) FlowChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.Workspace.Children(flowParams(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// MoveFlow handles POST /api/projects/{projectID}/flows/{flowID}/move.
func (h *WorkspaceHandler) MoveFlow(w http.ResponseWriter, r *http.Request) {
	var req MoveFlowRequest
	if !decode(w, r, &req) {
		return
	}
	projectID, flowID := flowParams(r)
	f, err := h.Workspace.MoveFlow(r.Context(), projectID, flowID, req.ParentID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Roots handles GET /api/projects/{projectID}/roots.
func (h *WorkspaceHandler) Roots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.Workspace.Roots(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, roots)
}

// Tree handles GET /api/projects/{projectID}/tree.
func (h *WorkspaceHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Workspace.Tree(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Connect handles POST /api/projects/{projectID}/flows/{flowID}/connect.
func (h *WorkspaceHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decode(w, r, &req) {
		return
	}
	projectID, flowID := flowParams(r)
	c, err := h.Workspace.Connect(r.Context(), projectID, flowID, req.Source, req.Target)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateConnections handles PUT /api/projects/{projectID}/flows/{flowID}/connections.
func (h *WorkspaceHandler) UpdateConnections(w http.ResponseWriter, r *http.Request) {
	var req ConnectionsRequest
	if !decode(w, r, &req) {
		return
	}
	projectID, flowID := flowParams(r)
	edges, err := h.Workspace.UpdateConnections(r.Context(), projectID, flowID, req.Connections)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}

// Edges handles GET /api/projects/{projectID}/flows/{flowID}/edges.
func (h *WorkspaceHandler) Edges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.Workspace.Edges(flowParams(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}
