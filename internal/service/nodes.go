package service

import (
	"context"
	"slices"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/markdown"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// NodeRef addresses one node.
type NodeRef struct {
	ProjectID string
	FlowID    string
	NodeID    string
}

// NodeUpdate carries the editable node fields. Nil fields keep their value.
type NodeUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Shape       *string `json:"shape,omitempty"`
	HasSubFlow  *bool   `json:"hasSubFlow,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// AddNode appends a node to a flow. A node created with HasSubFlow gets its
// sub-flow in the same mutation.
func (w *Workspace) AddNode(ctx context.Context, projectID, flowID string, spec flow.NodeSpec) (models.Node, error) {
	if spec.Shape != "" && !flow.ValidShape(spec.Shape) {
		return models.Node{}, opErr("add node", flowID, invalid("unknown shape %q", spec.Shape))
	}
	var out models.Node
	_, err := w.updateProject(ctx, "add node", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		n := flow.NewNode(spec)
		level := flow.Patch
		if n.Data.HasSubFlow {
			id, err := addSubFlow(p, flowID, n.Data.Label+flow.SubFlowSuffix)
			if err != nil {
				return err
			}
			n.Data.SubFlowID = &id
			level = flow.Minor
			f = p.FindFlow(flowID)
		}
		f.Nodes = append(f.Nodes, n)
		if level == flow.Patch {
			p.Version = flow.Bump(p.Version, flow.Patch)
		}
		out = clone(n)
		return nil
	})
	return out, err
}

// UpdateNode merges upd into the node's data and re-derives its style.
// Turning HasSubFlow on for a node without a sub-flow creates
// "<title> details" under the node's flow and attaches it.
func (w *Workspace) UpdateNode(ctx context.Context, ref NodeRef, upd NodeUpdate) (models.Node, error) {
	if upd.Shape != nil && !flow.ValidShape(*upd.Shape) {
		return models.Node{}, opErr("update node", ref.NodeID, invalid("unknown shape %q", *upd.Shape))
	}
	return w.mutateNode(ctx, "update node", ref, func(p *models.Project, n *models.Node) (flow.Level, error) {
		d := &n.Data
		if upd.Title != nil {
			d.Label = *upd.Title
		}
		if upd.Description != nil {
			d.Description = *upd.Description
		}
		if upd.Color != nil {
			d.Color = *upd.Color
		}
		if upd.Shape != nil {
			d.Shape = *upd.Shape
		}
		if upd.Status != nil {
			if !hasStatus(p.Statuses, *upd.Status) {
				return flow.Patch, invalid("unknown status %q", *upd.Status)
			}
			d.Status = *upd.Status
		}
		if upd.HasSubFlow != nil {
			d.HasSubFlow = *upd.HasSubFlow
		}
		n.Style = flow.DeriveStyle(d.Shape, d.Color)

		if d.HasSubFlow && p.FindFlow(d.SubFlow()) == nil {
			id, err := addSubFlow(p, ref.FlowID, d.Label+flow.SubFlowSuffix)
			if err != nil {
				return flow.Patch, err
			}
			d.SubFlowID = &id
			return flow.Minor, nil
		}
		return flow.Patch, nil
	})
}

// MoveNode sets the node's canvas position.
func (w *Workspace) MoveNode(ctx context.Context, ref NodeRef, pos models.Position) (models.Node, error) {
	return w.mutateNode(ctx, "move node", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Position = pos
		return flow.Patch, nil
	})
}

// SetNodeStatus moves the node to one of the project's statuses.
func (w *Workspace) SetNodeStatus(ctx context.Context, ref NodeRef, status string) (models.Node, error) {
	return w.UpdateNode(ctx, ref, NodeUpdate{Status: &status})
}

// SaveNodeDocument stores the node's document and appends a save-log entry.
func (w *Workspace) SaveNodeDocument(ctx context.Context, ref NodeRef, title, content string) (models.DocumentVersion, error) {
	var v models.DocumentVersion
	_, err := w.mutateNode(ctx, "save node document", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		if n.Data.Document.ID == "" {
			n.Data.Document.ID = util.NewID("doc")
		}
		v = flow.RecordSave(&n.Data.Document, title, content, w.now())
		return flow.Patch, nil
	})
	return v, err
}

// AttachImage embeds a data URL image in the node's document and returns it
// with the markdown reference to splice into the text.
func (w *Workspace) AttachImage(ctx context.Context, ref NodeRef, dataURL string) (models.Image, string, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return models.Image{}, "", opErr("attach image", ref.NodeID, invalid("image must be a data:image URL"))
	}
	img := models.Image{ID: util.NewID("img"), Data: dataURL}
	_, err := w.mutateNode(ctx, "attach image", ref, func(_ *models.Project, n *models.Node) (flow.Level, error) {
		n.Data.Document.Images = append(n.Data.Document.Images, img)
		return flow.Patch, nil
	})
	if err != nil {
		return models.Image{}, "", err
	}
	return img, markdown.ImageReference(img.ID), nil
}

// DeleteNode removes the node and every connection touching it. A resolvable
// sub-flow is deleted with its descendants first unless the node's own flow is
// among them; a stale reference is ignored.
func (w *Workspace) DeleteNode(ctx context.Context, ref NodeRef) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var removed []string
	_, err := w.updateProjectLocked(ctx, "delete node", ref.ProjectID, func(p *models.Project) error {
		f := p.FindFlow(ref.FlowID)
		if f == nil {
			return ErrFlowNotFound
		}
		i := f.NodeIndex(ref.NodeID)
		if i < 0 {
			return ErrNodeNotFound
		}
		// Skip the cascade when the node's own flow sits under its sub-flow.
		if sub := f.Nodes[i].Data.SubFlow(); sub != "" && !slices.Contains(flow.Descendants(p.Flows, sub), ref.FlowID) {
			if ids, err := deleteFlow(p, sub); err == nil {
				removed = ids
			}
		}
		// The cascade may have reshuffled p.Flows.
		f = p.FindFlow(ref.FlowID)
		if f == nil {
			return ErrFlowNotFound
		}
		flow.RemoveNode(f, ref.NodeID)
		p.Version = flow.Bump(p.Version, flow.Patch)
		return nil
	})
	if err != nil {
		return err
	}
	w.repointSelection(ref.ProjectID, removed)
	return nil
}

// mutateNode resolves ref inside a project update and applies fn to the node.
// fn reports the version level the change warrants.
func (w *Workspace) mutateNode(ctx context.Context, op string, ref NodeRef, fn func(p *models.Project, n *models.Node) (flow.Level, error)) (models.Node, error) {
	var out models.Node
	_, err := w.updateProject(ctx, op, ref.ProjectID, func(p *models.Project) error {
		f := p.FindFlow(ref.FlowID)
		if f == nil {
			return ErrFlowNotFound
		}
		i := f.NodeIndex(ref.NodeID)
		if i < 0 {
			return ErrNodeNotFound
		}
		n := f.Nodes[i]
		level, err := fn(p, &n)
		if err != nil {
			return err
		}
		// fn may have appended flows; resolve again before writing back.
		f = p.FindFlow(ref.FlowID)
		f.Nodes[i] = n
		if level == flow.Patch {
			p.Version = flow.Bump(p.Version, flow.Patch)
		}
		out = clone(n)
		return nil
	})
	return out, err
}
