package service

import (
	"context"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"go.uber.org/zap"
)

// FlowUpdate carries editable flow fields. Nil fields are left unchanged.
type FlowUpdate struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

// CreateSubFlow appends a flow under parentFlowID and bumps the project's
// minor version. It returns the new flow id.
func (w *Workspace) CreateSubFlow(ctx context.Context, projectID, parentFlowID, name string) (string, error) {
	var id string
	_, err := w.updateProject(ctx, "create sub-flow", projectID, func(p *models.Project) error {
		var err error
		id, err = addSubFlow(p, parentFlowID, name)
		return err
	})
	if err != nil {
		return "", err
	}
	w.log.Info("sub-flow created", zap.String("project_id", projectID), zap.String("flow_id", id))
	return id, nil
}

func addSubFlow(p *models.Project, parentFlowID, name string) (string, error) {
	if p.FindFlow(parentFlowID) == nil {
		return "", ErrFlowNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("flow name is required")
	}
	f := flow.NewSubFlow(parentFlowID, name)
	p.Flows = append(p.Flows, f)
	p.Version = flow.Bump(p.Version, flow.Minor)
	return f.ID, nil
}

// Flow returns a snapshot of one flow.
func (w *Workspace) Flow(projectID, flowID string) (models.Flow, error) {
	var out models.Flow
	err := w.read("get flow", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		out = clone(*f)
		return nil
	})
	return out, err
}

// Path returns the root-first breadcrumb ending at flowID.
func (w *Workspace) Path(projectID, flowID string) ([]models.Flow, error) {
	var out []models.Flow
	err := w.read("flow path", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		for _, step := range flow.BuildPath(p.Flows, *f) {
			out = append(out, clone(step))
		}
		return nil
	})
	return out, err
}

// Children lists the direct sub-flows of flowID.
func (w *Workspace) Children(projectID, flowID string) ([]models.Flow, error) {
	out := []models.Flow{}
	err := w.read("list children", projectID, func(p *models.Project) error {
		if p.FindFlow(flowID) == nil {
			return ErrFlowNotFound
		}
		for _, c := range flow.Children(p.Flows, flowID) {
			out = append(out, clone(c))
		}
		return nil
	})
	return out, err
}

// Roots lists the parentless flows of a project.
func (w *Workspace) Roots(projectID string) ([]models.Flow, error) {
	out := []models.Flow{}
	err := w.read("list roots", projectID, func(p *models.Project) error {
		for _, f := range p.Flows {
			if f.IsRoot() {
				out = append(out, clone(f))
			}
		}
		return nil
	})
	return out, err
}

// Tree returns the nested flow forest of a project.
func (w *Workspace) Tree(projectID string) ([]flow.TreeNode, error) {
	var out []flow.TreeNode
	err := w.read("flow tree", projectID, func(p *models.Project) error {
		out = flow.Tree(p.Flows)
		return nil
	})
	return out, err
}

// UpdateFlow renames a flow or changes its status. Bumps patch.
func (w *Workspace) UpdateFlow(ctx context.Context, projectID, flowID string, upd FlowUpdate) (models.Flow, error) {
	var out models.Flow
	_, err := w.updateProject(ctx, "update flow", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return invalid("flow name is required")
			}
			f.Name = name
		}
		if upd.Status != nil {
			if !hasStatus(p.Statuses, *upd.Status) {
				return invalid("unknown status %q", *upd.Status)
			}
			f.Status = *upd.Status
		}
		p.Version = flow.Bump(p.Version, flow.Patch)
		out = clone(*f)
		return nil
	})
	return out, err
}

// MoveFlow re-parents flowID under newParentID, or makes it a root when
// newParentID is empty. A move that would make the flow its own ancestor is
// rejected with ErrCycleDetected.
func (w *Workspace) MoveFlow(ctx context.Context, projectID, flowID, newParentID string) (models.Flow, error) {
	var out models.Flow
	_, err := w.updateProject(ctx, "move flow", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		if newParentID == "" {
			f.ParentID = nil
		} else {
			if p.FindFlow(newParentID) == nil {
				return ErrFlowNotFound
			}
			if flow.CreatesCycle(p.Flows, flowID, newParentID) {
				return ErrCycleDetected
			}
			if f.IsRoot() && rootCount(p.Flows) == 1 {
				return invalid("project must keep a root flow")
			}
			parent := newParentID
			f.ParentID = &parent
		}
		p.Version = flow.Bump(p.Version, flow.Patch)
		out = clone(*f)
		return nil
	})
	return out, err
}

// DeleteFlow removes flowID and every flow below it. Root flows cannot be
// deleted. When the current flow is removed, the first remaining root
// becomes current.
func (w *Workspace) DeleteFlow(ctx context.Context, projectID, flowID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var removed []string
	_, err := w.updateProjectLocked(ctx, "delete flow", projectID, func(p *models.Project) error {
		var err error
		removed, err = deleteFlow(p, flowID)
		return err
	})
	if err != nil {
		return err
	}
	w.repointSelection(projectID, removed)
	w.log.Info("flow deleted", zap.String("flow_id", flowID), zap.Int("removed", len(removed)))
	return nil
}

// deleteFlow removes the flow and its descendants from p and returns the
// removed ids.
func deleteFlow(p *models.Project, flowID string) ([]string, error) {
	f := p.FindFlow(flowID)
	if f == nil {
		return nil, ErrFlowNotFound
	}
	if f.IsRoot() {
		return nil, ErrRootFlowDeletion
	}
	ids := flow.Descendants(p.Flows, flowID)
	p.Flows = flow.RemoveFlows(p.Flows, ids)
	return ids, nil
}

func (w *Workspace) repointSelection(projectID string, removed []string) {
	if w.currentProject != projectID {
		return
	}
	for _, id := range removed {
		if id != w.currentFlow {
			continue
		}
		w.currentFlow = ""
		if i := w.projectIndex(projectID); i >= 0 {
			if root, ok := flow.FirstRoot(w.projects[i].Flows); ok {
				w.currentFlow = root.ID
			}
		}
		return
	}
}

// read runs fn against the stored project without persisting.
func (w *Workspace) read(op, projectID string, fn func(p *models.Project) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.projectIndex(projectID)
	if i < 0 {
		return opErr(op, projectID, ErrProjectNotFound)
	}
	if err := fn(&w.projects[i]); err != nil {
		return opErr(op, projectID, err)
	}
	return nil
}

func hasStatus(statuses []models.Status, id string) bool {
	for _, s := range statuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

func rootCount(flows []models.Flow) int {
	n := 0
	for _, f := range flows {
		if f.IsRoot() {
			n++
		}
	}
	return n
}
