package service

import (
	"context"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
)

// Connect links two nodes of a flow with an unconditioned connection.
func (w *Workspace) Connect(ctx context.Context, projectID, flowID, sourceID, targetID string) (models.Connection, error) {
	var out models.Connection
	_, err := w.updateProject(ctx, "connect", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		if f.NodeIndex(sourceID) < 0 || f.NodeIndex(targetID) < 0 {
			return ErrNodeNotFound
		}
		out = flow.Connect(f, sourceID, targetID)
		p.Version = flow.Bump(p.Version, flow.Patch)
		return nil
	})
	return out, err
}

// UpdateConnections replaces the flow's connection table and returns the
// regenerated edges. Incomplete rows are stored but produce no edge.
func (w *Workspace) UpdateConnections(ctx context.Context, projectID, flowID string, conns []models.Connection) ([]models.Edge, error) {
	var edges []models.Edge
	_, err := w.updateProject(ctx, "update connections", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		edges = flow.ReplaceConnections(f, conns)
		p.Version = flow.Bump(p.Version, flow.Patch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// Edges returns the flow's edges, derived from its connections.
func (w *Workspace) Edges(projectID, flowID string) ([]models.Edge, error) {
	var edges []models.Edge
	err := w.read("list edges", projectID, func(p *models.Project) error {
		f := p.FindFlow(flowID)
		if f == nil {
			return ErrFlowNotFound
		}
		edges = f.Edges()
		return nil
	})
	return edges, err
}
