package http

import (
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/go-chi/chi/v5"
)

// AddNodeRequest is the payload of POST .../nodes.
type AddNodeRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	Shape       string          `json:"shape"`
	HasSubFlow  bool            `json:"hasSubFlow"`
	Position    models.Position `json:"position"`
}

// StatusRequest sets a status value.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DocumentRequest saves a document.
type DocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ImageRequest attaches a data URL image.
type ImageRequest struct {
	Data string `json:"data" validate:"required"`
}

// ImageResponse returns the stored image and the markdown to splice in.
type ImageResponse struct {
	Image     models.Image `json:"image"`
	Reference string       `json:"reference"`
}

func nodeRef(r *http.Request) service.NodeRef {
	return service.NodeRef{
		ProjectID: chi.URLParam(r, "projectID"),
		FlowID:    chi.URLParam(r, "flowID"),
		NodeID:    chi.URLParam(r, "nodeID"),
	}
}

// AddNode handles POST /api/projects/{projectID}/flows/{flowID}/nodes.
func (h *WorkspaceHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if !decode(w, r, &req) {
		return
	}
	projectID, flowID := flowParams(r)
	n, err := h.Workspace.AddNode(r.Context(), projectID, flowID, flow.NodeSpec{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Shape:       req.Shape,
		HasSubFlow:  req.HasSubFlow,
		Position:    req.Position,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNode handles PATCH /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}.
func (h *WorkspaceHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req service.NodeUpdate
	if !decode(w, r, &req) {
		return
	}
	n, err := h.Workspace.UpdateNode(r.Context(), nodeRef(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNode handles DELETE /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}.
func (h *WorkspaceHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteNode(r.Context(), nodeRef(r)); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNode handles PUT /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/position.
func (h *WorkspaceHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos models.Position
	if !decode(w, r, &pos) {
		return
	}
	n, err := h.Workspace.MoveNode(r.Context(), nodeRef(r), pos)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// SetNodeStatus handles PUT /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/status.
func (h *WorkspaceHandler) SetNodeStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.Workspace.SetNodeStatus(r.Context(), nodeRef(r), req.Status)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// SaveNodeDocument handles PUT /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/document.
func (h *WorkspaceHandler) SaveNodeDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Workspace.SaveNodeDocument(r.Context(), nodeRef(r), req.Title, req.Content)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AttachImage handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/images.
func (h *WorkspaceHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if !decode(w, r, &req) {
		return
	}
	img, ref, err := h.Workspace.AttachImage(r.Context(), nodeRef(r), req.Data)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, ImageResponse{Image: img, Reference: ref})
}

// AddMetric handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/metrics.
func (h *WorkspaceHandler) AddMetric(w http.ResponseWriter, r *http.Request) {
	var req service.MetricInput
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Workspace.AddMetric(r.Context(), nodeRef(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		models.Metric
		Achievement float64 `json:"achievement"`
	}{m, flow.Achievement(m)})
}

// AddImprovement handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/improvements.
func (h *WorkspaceHandler) AddImprovement(w http.ResponseWriter, r *http.Request) {
	var req service.ImprovementInput
	if !decode(w, r, &req) {
		return
	}
	imp, err := h.Workspace.AddImprovement(r.Context(), nodeRef(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, imp)
}

// UpdateImprovementStatus handles PUT /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/improvements/{recordID}/status.
func (h *WorkspaceHandler) UpdateImprovementStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	imp, err := h.Workspace.UpdateImprovementStatus(r.Context(), nodeRef(r), chi.URLParam(r, "recordID"), req.Status)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

// AddChecklistItem handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/checklist.
func (h *WorkspaceHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req service.ChecklistInput
	if !decode(w, r, &req) {
		return
	}
	item, err := h.Workspace.AddChecklistItem(r.Context(), nodeRef(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ToggleChecklistItem handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/checklist/{recordID}/toggle.
func (h *WorkspaceHandler) ToggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Workspace.ToggleChecklistItem(r.Context(), nodeRef(r), chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AddRisk handles POST /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/risks.
func (h *WorkspaceHandler) AddRisk(w http.ResponseWriter, r *http.Request) {
	var req service.RiskInput
	if !decode(w, r, &req) {
		return
	}
	risk, err := h.Workspace.AddRisk(r.Context(), nodeRef(r), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, risk)
}

// removeRecord adapts a Remove* operation to a DELETE handler.
func (h *WorkspaceHandler) removeRecord(remove func(*http.Request, service.NodeRef, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := remove(r, nodeRef(r), chi.URLParam(r, "recordID")); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveMetric returns the handler for DELETE /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/metrics/{recordID}.
func (h *WorkspaceHandler) RemoveMetric() http.HandlerFunc {
	return h.removeRecord(func(r *http.Request, ref service.NodeRef, id string) error {
		return h.Workspace.RemoveMetric(r.Context(), ref, id)
	})
}

// RemoveImprovement returns the handler for DELETE /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/improvements/{recordID}.
func (h *WorkspaceHandler) RemoveImprovement() http.HandlerFunc {
	return h.removeRecord(func(r *http.Request, ref service.NodeRef, id string) error {
		return h.Workspace.RemoveImprovement(r.Context(), ref, id)
	})
}

// RemoveChecklistItem returns the handler for DELETE /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/checklist/{recordID}.
func (h *WorkspaceHandler) RemoveChecklistItem() http.HandlerFunc {
	return h.removeRecord(func(r *http.Request, ref service.NodeRef, id string) error {
		return h.Workspace.RemoveChecklistItem(r.Context(), ref, id)
	})
}

// RemoveRisk returns the handler for DELETE /api/projects/{projectID}/flows/{flowID}/nodes/{nodeID}/risks/{recordID}.
func (h *WorkspaceHandler) RemoveRisk() http.HandlerFunc {
	return h.removeRecord(func(r *http.Request, ref service.NodeRef, id string) error {
		return h.Workspace.RemoveRisk(r.Context(), ref, id)
	})
}
