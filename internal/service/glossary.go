package service

import (
	"context"
	"sort"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// TermInput describes a glossary entry.
type TermInput struct {
	Term        string `json:"term"        validate:"required"`
	Description string `json:"description"`
}

// AddTerm appends a glossary entry to the project.
func (w *Workspace) AddTerm(ctx context.Context, projectID string, in TermInput) (models.GlossaryTerm, error) {
	if err := required("term", in.Term); err != nil {
		return models.GlossaryTerm{}, opErr("add term", projectID, err)
	}
	t := models.GlossaryTerm{
		ID:          util.NewID("glossary"),
		Term:        strings.TrimSpace(in.Term),
		Description: in.Description,
		CreatedAt:   w.now(),
	}
	_, err := w.updateProject(ctx, "add term", projectID, func(p *models.Project) error {
		p.Glossary = append(p.Glossary, t)
		return nil
	})
	if err != nil {
		return models.GlossaryTerm{}, err
	}
	return t, nil
}

// UpdateTerm replaces a glossary entry's term and description.
func (w *Workspace) UpdateTerm(ctx context.Context, projectID, termID string, in TermInput) (models.GlossaryTerm, error) {
	if err := required("term", in.Term); err != nil {
		return models.GlossaryTerm{}, opErr("update term", termID, err)
	}
	var out models.GlossaryTerm
	_, err := w.updateProject(ctx, "update term", projectID, func(p *models.Project) error {
		for i := range p.Glossary {
			if p.Glossary[i].ID == termID {
				p.Glossary[i].Term = strings.TrimSpace(in.Term)
				p.Glossary[i].Description = in.Description
				out = p.Glossary[i]
				return nil
			}
		}
		return ErrRecordNotFound
	})
	return out, err
}

// DeleteTerm removes a glossary entry.
func (w *Workspace) DeleteTerm(ctx context.Context, projectID, termID string) error {
	_, err := w.updateProject(ctx, "delete term", projectID, func(p *models.Project) error {
		if !removeByID(&p.Glossary, termID, func(t models.GlossaryTerm) string { return t.ID }) {
			return ErrRecordNotFound
		}
		return nil
	})
	return err
}

// SearchTerms returns the entries whose term or description contains query,
// case-insensitively. An empty query lists everything.
func (w *Workspace) SearchTerms(projectID, query string) ([]models.GlossaryTerm, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.GlossaryTerm{}
	err := w.read("search terms", projectID, func(p *models.Project) error {
		for _, t := range p.Glossary {
			if q == "" ||
				strings.Contains(strings.ToLower(t.Term), q) ||
				strings.Contains(strings.ToLower(t.Description), q) {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

// MatchTerms returns the entries whose term appears in content, longest
// term first so overlapping matches can be highlighted greedily.
func (w *Workspace) MatchTerms(projectID, content string) ([]models.GlossaryTerm, error) {
	lower := strings.ToLower(content)
	out := []models.GlossaryTerm{}
	err := w.read("match terms", projectID, func(p *models.Project) error {
		for _, t := range p.Glossary {
			if t.Term != "" && strings.Contains(lower, strings.ToLower(t.Term)) {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Term) > len(out[j].Term) })
	return out, err
}
