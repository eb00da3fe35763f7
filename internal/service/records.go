package service

import (
	"context"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// MetricInput describes a KPI to add.
type MetricInput struct {
	Name    string  `json:"name"    validate:"required"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
	Unit    string  `json:"unit"`
}

// ImprovementInput describes an improvement action to add.
type ImprovementInput struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=high medium low"`
	Cycle       string `json:"cycle"       validate:"omitempty,oneof=plan do check act"`
}

// ChecklistInput describes a checklist item to add.
type ChecklistInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// RiskInput describes a risk to add.
type RiskInput struct {
	Title       string `json:"title"      validate:"required"`
	Description string `json:"description"`
	Level       string `json:"level"      validate:"omitempty,oneof=high medium low"`
	Mitigation  string `json:"mitigation"`
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

// AddMetric appends a KPI to the node.
func (w *Workspace) AddMetric(ctx context.Context, ref NodeRef, in MetricInput) (models.Metric, error) {
	if err := required("name", in.Name); err != nil {
		return models.Metric{}, opErr("add metric", ref.NodeID, err)
	}
	m := models.Metric{
		ID:        util.NewID("metric"),
		Name:      in.Name,
		Target:    in.Target,
		Current:   in.Current,
		Unit:      in.Unit,
		CreatedAt: w.now(),
	}
	_, err := w.mutateNode(ctx, "add metric", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Data.Metrics = append(n.Data.Metrics, m)
		return flow.Patch, nil
	})
	return m, err
}

// AddImprovement appends an improvement action in the planned state.
func (w *Workspace) AddImprovement(ctx context.Context, ref NodeRef, in ImprovementInput) (models.Improvement, error) {
	if err := required("title", in.Title); err != nil {
		return models.Improvement{}, opErr("add improvement", ref.NodeID, err)
	}
	if in.Priority == "" {
		in.Priority = flow.PriorityMedium
	}
	if in.Cycle == "" {
		in.Cycle = flow.CyclePlan
	}
	imp := models.Improvement{
		ID:          util.NewID("improvement"),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Cycle:       in.Cycle,
		Status:      flow.ImprovementPlanned,
		CreatedAt:   w.now(),
	}
	_, err := w.mutateNode(ctx, "add improvement", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Data.Improvements = append(n.Data.Improvements, imp)
		return flow.Patch, nil
	})
	return imp, err
}

// AddChecklistItem appends an unchecked item.
func (w *Workspace) AddChecklistItem(ctx context.Context, ref NodeRef, in ChecklistInput) (models.ChecklistItem, error) {
	if err := required("title", in.Title); err != nil {
		return models.ChecklistItem{}, opErr("add checklist item", ref.NodeID, err)
	}
	item := models.ChecklistItem{
		ID:          util.NewID("check"),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   w.now(),
	}
	_, err := w.mutateNode(ctx, "add checklist item", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Data.Checklist = append(n.Data.Checklist, item)
		return flow.Patch, nil
	})
	return item, err
}

// AddRisk appends a risk entry.
func (w *Workspace) AddRisk(ctx context.Context, ref NodeRef, in RiskInput) (models.Risk, error) {
	if err := required("title", in.Title); err != nil {
		return models.Risk{}, opErr("add risk", ref.NodeID, err)
	}
	if in.Level == "" {
		in.Level = flow.PriorityMedium
	}
	r := models.Risk{
		ID:          util.NewID("risk"),
		Title:       in.Title,
		Description: in.Description,
		Level:       in.Level,
		Mitigation:  in.Mitigation,
		CreatedAt:   w.now(),
	}
	_, err := w.mutateNode(ctx, "add risk", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Data.Risks = append(n.Data.Risks, r)
		return flow.Patch, nil
	})
	return r, err
}

// ToggleChecklistItem flips the checked flag of one item.
func (w *Workspace) ToggleChecklistItem(ctx context.Context, ref NodeRef, itemID string) (models.ChecklistItem, error) {
	var out models.ChecklistItem
	_, err := w.mutateNode(ctx, "toggle checklist item", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		for i := range n.Data.Checklist {
			if n.Data.Checklist[i].ID == itemID {
				n.Data.Checklist[i].Checked = !n.Data.Checklist[i].Checked
				out = n.Data.Checklist[i]
				return flow.Patch, nil
			}
		}
		return flow.Patch, ErrRecordNotFound
	})
	return out, err
}

// UpdateImprovementStatus sets the status of one improvement action.
func (w *Workspace) UpdateImprovementStatus(ctx context.Context, ref NodeRef, improvementID, status string) (models.Improvement, error) {
	if err := required("status", status); err != nil {
		return models.Improvement{}, opErr("update improvement status", improvementID, err)
	}
	var out models.Improvement
	_, err := w.mutateNode(ctx, "update improvement status", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		for i := range n.Data.Improvements {
			if n.Data.Improvements[i].ID == improvementID {
				n.Data.Improvements[i].Status = status
				out = n.Data.Improvements[i]
				return flow.Patch, nil
			}
		}
		return flow.Patch, ErrRecordNotFound
	})
	return out, err
}

// RemoveMetric deletes one KPI.
func (w *Workspace) RemoveMetric(ctx context.Context, ref NodeRef, id string) error {
	return w.removeRecord(ctx, "remove metric", ref, func(d *models.NodeData) bool {
		return removeByID(&d.Metrics, id, func(m models.Metric) string { return m.ID })
	})
}

// RemoveImprovement deletes one improvement action.
func (w *Workspace) RemoveImprovement(ctx context.Context, ref NodeRef, id string) error {
	return w.removeRecord(ctx, "remove improvement", ref, func(d *models.NodeData) bool {
		return removeByID(&d.Improvements, id, func(m models.Improvement) string { return m.ID })
	})
}

// RemoveChecklistItem deletes one checklist item.
func (w *Workspace) RemoveChecklistItem(ctx context.Context, ref NodeRef, id string) error {
	return w.removeRecord(ctx, "remove checklist item", ref, func(d *models.NodeData) bool {
		return removeByID(&d.Checklist, id, func(m models.ChecklistItem) string { return m.ID })
	})
}

// RemoveRisk deletes one risk entry.
func (w *Workspace) RemoveRisk(ctx context.Context, ref NodeRef, id string) error {
	return w.removeRecord(ctx, "remove risk", ref, func(d *models.NodeData) bool {
		return removeByID(&d.Risks, id, func(m models.Risk) string { return m.ID })
	})
}

func (w *Workspace) removeRecord(ctx context.Context, op string, ref NodeRef, remove func(d *models.NodeData) bool) error {
	_, err := w.mutateNode(ctx, op, ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		if !remove(&n.Data) {
			return flow.Patch, ErrRecordNotFound
		}
		return flow.Patch, nil
	})
	return err
}

func removeByID[T any](list *[]T, id string, idOf func(T) string) bool {
	for i, v := range *list {
		if idOf(v) == id {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
