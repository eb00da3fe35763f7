package service

import (
	"context"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// CreateDocument adds an empty project-level document.
func (w *Workspace) CreateDocument(ctx context.Context, projectID, title string) (models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Document{}, opErr("create document", projectID, invalid("title is required"))
	}
	now := w.now()
	doc := models.Document{
		ID:        util.NewID("doc"),
		Title:     title,
		Images:    []models.Image{},
		Versions:  []models.DocumentVersion{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := w.updateProject(ctx, "create document", projectID, func(p *models.Project) error {
		p.Documents = append(p.Documents, doc)
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// SaveDocument stores title and content and appends one save-log entry.
func (w *Workspace) SaveDocument(ctx context.Context, projectID, docID, title, content string) (models.DocumentVersion, error) {
	var v models.DocumentVersion
	_, err := w.updateProject(ctx, "save document", projectID, func(p *models.Project) error {
		i := documentIndex(p.Documents, docID)
		if i < 0 {
			return ErrRecordNotFound
		}
		v = flow.RecordSave(&p.Documents[i], title, content, w.now())
		return nil
	})
	return v, err
}

// DeleteDocument removes a project-level document.
func (w *Workspace) DeleteDocument(ctx context.Context, projectID, docID string) error {
	_, err := w.updateProject(ctx, "delete document", projectID, func(p *models.Project) error {
		if !removeByID(&p.Documents, docID, func(d models.Document) string { return d.ID }) {
			return ErrRecordNotFound
		}
		return nil
	})
	return err
}

// Documents lists the project-level documents.
func (w *Workspace) Documents(projectID string) ([]models.Document, error) {
	out := []models.Document{}
	err := w.read("list documents", projectID, func(p *models.Project) error {
		for _, d := range p.Documents {
			out = append(out, clone(d))
		}
		return nil
	})
	return out, err
}

func documentIndex(docs []models.Document, id string) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}
