package service

import (
	"context"
	"strings"
	"testing"

	"github.com/atinyakov/FlowDoc/internal/flow"
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRef(t *testing.T, p models.Project) NodeRef {
	t.Helper()
	root := rootOf(t, p)
	return NodeRef{ProjectID: p.ID, FlowID: root.ID, NodeID: root.Nodes[0].ID}
}

func ptr[T any](v T) *T { return &v }

func TestUpdateNode_DerivesStyle(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ref := startRef(t, p)
	ctx := context.Background()

	upd := NodeUpdate{Title: ptr("Check"), Shape: ptr(flow.ShapeDiamond), Color: ptr("#ff0000")}
	n1, err := w.UpdateNode(ctx, ref, upd)
	require.NoError(t, err)
	n2, err := w.UpdateNode(ctx, ref, upd)
	require.NoError(t, err)

	assert.Equal(t, "Check", n1.Data.Label)
	assert.Equal(t, flow.DeriveStyle(flow.ShapeDiamond, "#ff0000"), n1.Style)
	assert.Equal(t, n1.Style, n2.Style)

	_, err = w.UpdateNode(ctx, ref, NodeUpdate{Shape: ptr("hexagon")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateNode_CreatesSubFlow(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ref := startRef(t, p)

	n, err := w.UpdateNode(context.Background(), ref, NodeUpdate{Title: ptr("Billing"), HasSubFlow: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, n.Data.SubFlowID, "sub-flow must be attached in the same call")

	got, _ := w.Project(p.ID)
	sub := got.FindFlow(*n.Data.SubFlowID)
	require.NotNil(t, sub)
	assert.Equal(t, "Billing"+flow.SubFlowSuffix, sub.Name)
	assert.Equal(t, ref.FlowID, sub.Parent())
	assert.Equal(t, "1.1.0", got.Version)

	// A second update keeps the same sub-flow.
	n2, err := w.UpdateNode(context.Background(), ref, NodeUpdate{Description: ptr("x")})
	require.NoError(t, err)
	assert.Equal(t, *n.Data.SubFlowID, *n2.Data.SubFlowID)
}

func TestDeleteNode_CascadesSubFlow(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	root := rootOf(t, p)

	n, err := w.AddNode(ctx, p.ID, root.ID, flow.NodeSpec{Title: "Step", HasSubFlow: true})
	require.NoError(t, err)
	sub := *n.Data.SubFlowID
	_, err = w.CreateSubFlow(ctx, p.ID, sub, "Nested")
	require.NoError(t, err)
	start := root.Nodes[0].ID
	_, err = w.Connect(ctx, p.ID, root.ID, start, n.ID)
	require.NoError(t, err)

	require.NoError(t, w.DeleteNode(ctx, NodeRef{ProjectID: p.ID, FlowID: root.ID, NodeID: n.ID}))

	got, _ := w.Project(p.ID)
	require.Len(t, got.Flows, 1, "sub-flow and its descendants must go with the node")
	f := got.Flows[0]
	assert.Len(t, f.Nodes, 1)
	assert.Empty(t, f.Connections)
	assert.Empty(t, f.Edges())
}

func TestDeleteNode_SubFlowAboveOwnFlowKept(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	root := rootOf(t, p)

	s, err := w.CreateSubFlow(ctx, p.ID, root.ID, "S")
	require.NoError(t, err)
	sf, err := w.Flow(p.ID, s)
	require.NoError(t, err)
	ref := NodeRef{ProjectID: p.ID, FlowID: s, NodeID: sf.Nodes[0].ID}

	n, err := w.UpdateNode(ctx, ref, NodeUpdate{HasSubFlow: ptr(true)})
	require.NoError(t, err)
	sub := *n.Data.SubFlowID

	_, err = w.MoveFlow(ctx, p.ID, sub, root.ID)
	require.NoError(t, err)
	_, err = w.MoveFlow(ctx, p.ID, s, sub)
	require.NoError(t, err)

	require.NoError(t, w.DeleteNode(ctx, ref))

	got, err := w.Flow(p.ID, s)
	require.NoError(t, err, "the node's own flow must survive")
	assert.Equal(t, -1, got.NodeIndex(ref.NodeID))
	_, err = w.Flow(p.ID, sub)
	assert.NoError(t, err, "a sub-flow containing the node's flow is not cascaded")
}

func TestDeleteNode_StaleSubFlowIgnored(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	root := rootOf(t, p)

	n, err := w.AddNode(ctx, p.ID, root.ID, flow.NodeSpec{Title: "Step", HasSubFlow: true})
	require.NoError(t, err)
	require.NoError(t, w.DeleteFlow(ctx, p.ID, *n.Data.SubFlowID))

	err = w.DeleteNode(ctx, NodeRef{ProjectID: p.ID, FlowID: root.ID, NodeID: n.ID})
	require.NoError(t, err)

	err = w.DeleteNode(ctx, NodeRef{ProjectID: p.ID, FlowID: root.ID, NodeID: n.ID})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestUpdateConnections_DropsIncompleteRows(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	root := rootOf(t, p)

	edges, err := w.UpdateConnections(ctx, p.ID, root.ID, []models.Connection{
		{From: "n1", To: "n2", Condition: "yes"},
		{From: "", To: "n3"},
	})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "en1-n2", edges[0].ID)
	assert.Equal(t, "yes", edges[0].Label)

	f, _ := w.Flow(p.ID, root.ID)
	assert.Len(t, f.Connections, 2, "incomplete rows stay in the table")
	for _, c := range f.Connections {
		assert.NotEmpty(t, c.ID)
	}
	stored, err := w.Edges(p.ID, root.ID)
	require.NoError(t, err)
	assert.Equal(t, edges, stored)
}

func TestConnect(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	root := rootOf(t, p)
	n, _ := w.AddNode(ctx, p.ID, root.ID, flow.NodeSpec{})
	assert.Equal(t, flow.NewNodeLabel, n.Data.Label)

	c, err := w.Connect(ctx, p.ID, root.ID, root.Nodes[0].ID, n.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Condition)

	edges, _ := w.Edges(p.ID, root.ID)
	require.Len(t, edges, 1)
	assert.Equal(t, models.EdgeColor, edges[0].Style.Stroke)

	_, err = w.Connect(ctx, p.ID, root.ID, "ghost", n.ID)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodeRecords(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	ref := startRef(t, p)

	m, err := w.AddMetric(ctx, ref, MetricInput{Name: "Lead time", Target: 100, Current: 85})
	require.NoError(t, err)
	assert.InDelta(t, 85.0, flow.Achievement(m), 1e-9)
	_, err = w.AddMetric(ctx, ref, MetricInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	imp, err := w.AddImprovement(ctx, ref, ImprovementInput{Title: "Automate"})
	require.NoError(t, err)
	assert.Equal(t, flow.ImprovementPlanned, imp.Status)
	imp, err = w.UpdateImprovementStatus(ctx, ref, imp.ID, "doing")
	require.NoError(t, err)
	assert.Equal(t, "doing", imp.Status)

	item, err := w.AddChecklistItem(ctx, ref, ChecklistInput{Title: "Sign-off"})
	require.NoError(t, err)
	assert.False(t, item.Checked)
	item, err = w.ToggleChecklistItem(ctx, ref, item.ID)
	require.NoError(t, err)
	assert.True(t, item.Checked)
	_, err = w.ToggleChecklistItem(ctx, ref, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	risk, err := w.AddRisk(ctx, ref, RiskInput{Title: "Outage", Level: flow.PriorityHigh})
	require.NoError(t, err)
	assert.False(t, risk.CreatedAt.IsZero())

	f, _ := w.Flow(p.ID, ref.FlowID)
	d := f.Nodes[0].Data
	assert.Len(t, d.Metrics, 1)
	assert.Len(t, d.Improvements, 1)
	assert.Len(t, d.Checklist, 1)
	assert.Len(t, d.Risks, 1)
	assert.InDelta(t, 100.0, flow.ChecklistCompletion(d.Checklist), 1e-9)

	require.NoError(t, w.RemoveMetric(ctx, ref, m.ID))
	require.NoError(t, w.RemoveImprovement(ctx, ref, imp.ID))
	require.NoError(t, w.RemoveChecklistItem(ctx, ref, item.ID))
	require.NoError(t, w.RemoveRisk(ctx, ref, risk.ID))
	assert.ErrorIs(t, w.RemoveRisk(ctx, ref, risk.ID), ErrRecordNotFound)

	f, _ = w.Flow(p.ID, ref.FlowID)
	d = f.Nodes[0].Data
	assert.Empty(t, d.Metrics)
	assert.Empty(t, d.Risks)
}

func TestSaveNodeDocument_Versions(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	ref := startRef(t, p)

	var versions []string
	for i := 0; i < 4; i++ {
		v, err := w.SaveNodeDocument(ctx, ref, "Runbook", "body")
		require.NoError(t, err)
		versions = append(versions, v.Version)
	}
	assert.Equal(t, []string{"1.0.0", "1.0.1", "1.0.2", "1.0.3"}, versions)

	f, _ := w.Flow(p.ID, ref.FlowID)
	assert.Len(t, f.Nodes[0].Data.Document.Versions, 4)
	assert.Equal(t, "Runbook", f.Nodes[0].Data.Document.Title)
}

func TestAttachImage(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	ref := startRef(t, p)

	img, md, err := w.AttachImage(ctx, ref, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.True(t, strings.Contains(md, img.ID))

	_, _, err = w.AttachImage(ctx, ref, "https://example.com/x.png")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f, _ := w.Flow(p.ID, ref.FlowID)
	assert.Len(t, f.Nodes[0].Data.Document.Images, 1)
}

func TestMoveAndStatus(t *testing.T) {
	w, _, p := newTestWorkspace(t)
	ctx := context.Background()
	ref := startRef(t, p)

	n, err := w.MoveNode(ctx, ref, models.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 10, Y: 20}, n.Position)

	n, err = w.SetNodeStatus(ctx, ref, "published")
	require.NoError(t, err)
	assert.Equal(t, "published", n.Data.Status)

	_, err = w.SetNodeStatus(ctx, ref, "bogus")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
