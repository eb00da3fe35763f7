package flow

import (
	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// Connect appends an unconditioned connection from source to target and
// returns it. Edges follow automatically since they derive from connections.
func Connect(f *models.Flow, source, target string) models.Connection {
	c := models.Connection{
		ID:   util.NewID("conn"),
		From: source,
		To:   target,
	}
	f.Connections = append(f.Connections, c)
	return c
}

// ReplaceConnections swaps the connection table wholesale, assigning ids to
// rows that lack one, and returns the regenerated edges.
func ReplaceConnections(f *models.Flow, conns []models.Connection) []models.Edge {
	next := make([]models.Connection, len(conns))
	for i, c := range conns {
		if c.ID == "" {
			c.ID = util.NewID("conn")
		}
		next[i] = c
	}
	f.Connections = next
	return f.Edges()
}

// RemoveNode drops the node and every connection touching it. It returns the
// removed node and false when the id is unknown.
func RemoveNode(f *models.Flow, nodeID string) (models.Node, bool) {
	i := f.NodeIndex(nodeID)
	if i < 0 {
		return models.Node{}, false
	}
	removed := f.Nodes[i]
	f.Nodes = append(f.Nodes[:i:i], f.Nodes[i+1:]...)

	kept := make([]models.Connection, 0, len(f.Connections))
	for _, c := range f.Connections {
		if c.From != nodeID && c.To != nodeID {
			kept = append(kept, c)
		}
	}
	f.Connections = kept
	return removed, true
}
