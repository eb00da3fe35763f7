package http

import (
	"net/http"

	"github.com/atinyakov/FlowDoc/internal/markdown"
	"github.com/atinyakov/FlowDoc/internal/service"
	"github.com/go-chi/chi/v5"
)

// DocumentTitleRequest creates a project document.
type DocumentTitleRequest struct {
	Title string `json:"title" validate:"required"`
}

// MatchRequest carries text to match against the glossary.
type MatchRequest struct {
	Content string `json:"content"`
}

// InsertRequest wraps a selection of markdown text.
type InsertRequest struct {
	Content string `json:"content"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// InsertResponse is the edited text and the new selection.
type InsertResponse struct {
	Content        string `json:"content"`
	SelectionStart int    `json:"selectionStart"`
	SelectionEnd   int    `json:"selectionEnd"`
}

// SlashRequest applies a slash command at the cursor.
type SlashRequest struct {
	Content string `json:"content"`
	Cursor  int    `json:"cursor"`
	Command string `json:"command" validate:"required"`
}

// SlashResponse is the edited text and cursor.
type SlashResponse struct {
	Content string `json:"content"`
	Cursor  int    `json:"cursor"`
}

// ListDocuments handles GET /api/projects/{projectID}/documents.
func (h *WorkspaceHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Workspace.Documents(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// CreateDocument handles POST /api/projects/{projectID}/documents.
func (h *WorkspaceHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentTitleRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.Workspace.CreateDocument(r.Context(), chi.URLParam(r, "projectID"), req.Title)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// SaveDocument handles PUT /api/projects/{projectID}/documents/{docID}.
func (h *WorkspaceHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.Workspace.SaveDocument(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "docID"), req.Title, req.Content)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteDocument handles DELETE /api/projects/{projectID}/documents/{docID}.
func (h *WorkspaceHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteDocument(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "docID")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchTerms handles GET /api/projects/{projectID}/glossary.
func (h *WorkspaceHandler) SearchTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.Workspace.SearchTerms(chi.URLParam(r, "projectID"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

// AddTerm handles POST /api/projects/{projectID}/glossary.
func (h *WorkspaceHandler) AddTerm(w http.ResponseWriter, r *http.Request) {
	var req service.TermInput
	if !decode(w, r, &req) {
		return
	}
	t, err := h.Workspace.AddTerm(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTerm handles PUT /api/projects/{projectID}/glossary/{termID}.
func (h *WorkspaceHandler) UpdateTerm(w http.ResponseWriter, r *http.Request) {
	var req service.TermInput
	if !decode(w, r, &req) {
		return
	}
	t, err := h.Workspace.UpdateTerm(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "termID"), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTerm handles DELETE /api/projects/{projectID}/glossary/{termID}.
func (h *WorkspaceHandler) DeleteTerm(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteTerm(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "termID")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MatchTerms handles POST /api/projects/{projectID}/glossary/match.
func (h *WorkspaceHandler) MatchTerms(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decode(w, r, &req) {
		return
	}
	terms, err := h.Workspace.MatchTerms(chi.URLParam(r, "projectID"), req.Content)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

// SlashCommands handles GET /api/markdown/commands?q=.
func SlashCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, markdown.Filter(r.URL.Query().Get("q")))
}

// InsertMarkdown handles POST /api/markdown/insert.
func InsertMarkdown(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if !decode(w, r, &req) {
		return
	}
	text, start, end := markdown.Insert(req.Content, req.Start, req.End, req.Before, req.After)
	writeJSON(w, http.StatusOK, InsertResponse{Content: text, SelectionStart: start, SelectionEnd: end})
}

// ApplySlash handles POST /api/markdown/slash.
func ApplySlash(w http.ResponseWriter, r *http.Request) {
	var req SlashRequest
	if !decode(w, r, &req) {
		return
	}
	cmd, ok := markdown.Lookup(req.Command)
	if !ok {
		badRequest(w, r, "unknown command "+req.Command)
		return
	}
	text, cursor := markdown.ApplySlashCommand(req.Content, req.Cursor, cmd)
	writeJSON(w, http.StatusOK, SlashResponse{Content: text, Cursor: cursor})
}
