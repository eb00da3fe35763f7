package flow

import (
	"time"

	"github.com/atinyakov/FlowDoc/internal/models"
	"github.com/atinyakov/FlowDoc/internal/util"
)

// Defaults for seeded flows and nodes.
const (
	DefaultStatus    = "draft"
	RootFlowName     = "Main flow"
	StartNodeLabel   = "Start"
	NewNodeLabel     = "New process"
	SubFlowSuffix    = " details"
	defaultNodeType  = "default"
	startNodeOffsetX = 250
	startNodeOffsetY = 50
)

// NewRootFlow returns a parentless flow holding a single start node.
func NewRootFlow(name string) models.Flow {
	return newFlow(nil, name)
}

// NewSubFlow returns a flow nested under parentID holding a single start node.
func NewSubFlow(parentID, name string) models.Flow {
	p := parentID
	return newFlow(&p, name)
}

func newFlow(parentID *string, name string) models.Flow {
	if name == "" {
		name = RootFlowName
	}
	return models.Flow{
		ID:          util.NewID("flow"),
		Name:        name,
		ParentID:    parentID,
		Status:      DefaultStatus,
		Nodes:       []models.Node{startNode()},
		Connections: []models.Connection{},
	}
}

func startNode() models.Node {
	n := NewNode(NodeSpec{
		Title:    StartNodeLabel,
		Color:    DefaultColor,
		Shape:    ShapeRounded,
		Position: models.Position{X: startNodeOffsetX, Y: startNodeOffsetY},
	})
	n.ID = util.NewID("start")
	return n
}

// NodeSpec describes a node to create.
type NodeSpec struct {
	Title       string
	Description string
	Color       string
	Shape       string
	HasSubFlow  bool
	Position    models.Position
}

// NewNode builds a node with empty operational records and a derived style.
func NewNode(spec NodeSpec) models.Node {
	if spec.Title == "" {
		spec.Title = NewNodeLabel
	}
	if spec.Color == "" {
		spec.Color = DefaultColor
	}
	if spec.Shape == "" {
		spec.Shape = ShapeDefault
	}
	now := time.Now().UTC()
	return models.Node{
		ID:       util.NewID("node"),
		Type:     defaultNodeType,
		Position: spec.Position,
		Data: models.NodeData{
			Label:       spec.Title,
			Description: spec.Description,
			Color:       spec.Color,
			Shape:       spec.Shape,
			HasSubFlow:  spec.HasSubFlow,
			Status:      DefaultStatus,
			Document: models.Document{
				ID:        util.NewID("doc"),
				Images:    []models.Image{},
				Versions:  []models.DocumentVersion{},
				CreatedAt: now,
				UpdatedAt: now,
			},
			Metrics:      []models.Metric{},
			Improvements: []models.Improvement{},
			Checklist:    []models.ChecklistItem{},
			Risks:        []models.Risk{},
		},
		Style: DeriveStyle(spec.Shape, spec.Color),
	}
}

// BuildPath walks parent links from target up to its root and returns the
// chain root first. An unresolved parent ends the walk; the walk is bounded
// by len(flows) so a cyclic chain still terminates.
func BuildPath(flows []models.Flow, target models.Flow) []models.Flow {
	byID := index(flows)
	path := []models.Flow{target}
	current := target
	for steps := 0; steps < len(flows) && !current.IsRoot(); steps++ {
		parent, ok := byID[current.Parent()]
		if !ok {
			break
		}
		path = append(path, parent)
		current = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Descendants returns id followed by every flow whose parent chain reaches id.
func Descendants(flows []models.Flow, id string) []string {
	out := []string{id}
	seen := map[string]bool{id: true}
	for i := 0; i < len(out); i++ {
		for _, f := range flows {
			if f.Parent() == out[i] && !seen[f.ID] {
				seen[f.ID] = true
				out = append(out, f.ID)
			}
		}
	}
	return out
}

// RemoveFlows returns flows without the given ids, preserving order.
func RemoveFlows(flows []models.Flow, ids []string) []models.Flow {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]models.Flow, 0, len(flows))
	for _, f := range flows {
		if !drop[f.ID] {
			kept = append(kept, f)
		}
	}
	return kept
}

// FirstRoot returns the first parentless flow.
func FirstRoot(flows []models.Flow) (models.Flow, bool) {
	for _, f := range flows {
		if f.IsRoot() {
			return f, true
		}
	}
	return models.Flow{}, false
}

// Children returns the direct children of parentID in list order.
func Children(flows []models.Flow, parentID string) []models.Flow {
	var out []models.Flow
	for _, f := range flows {
		if f.Parent() == parentID && f.ID != parentID {
			out = append(out, f)
		}
	}
	return out
}

// CreatesCycle reports whether re-parenting flowID under newParentID would close
// a loop, i.e. newParentID is flowID itself or one of its descendants. The
// upward walk is bounded by len(flows).
func CreatesCycle(flows []models.Flow, flowID, newParentID string) bool {
	if newParentID == "" {
		return false
	}
	byID := index(flows)
	current := newParentID
	for steps := 0; steps <= len(flows); steps++ {
		if current == flowID {
			return true
		}
		f, ok := byID[current]
		if !ok || f.IsRoot() {
			return false
		}
		current = f.Parent()
	}
	// The existing chain is itself cyclic.
	return true
}

// TreeNode is a nested view of the flow forest.
type TreeNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	Children []TreeNode `json:"children"`
}

// Tree nests flows under their parents. Flows whose parent does not resolve
// are listed as roots so nothing disappears from the view.
func Tree(flows []models.Flow) []TreeNode {
	byID := index(flows)
	var roots []TreeNode
	seen := map[string]bool{}
	for _, f := range flows {
		if _, ok := byID[f.Parent()]; f.IsRoot() || !ok {
			roots = append(roots, subtree(flows, f, seen))
		}
	}
	return roots
}

func subtree(flows []models.Flow, f models.Flow, seen map[string]bool) TreeNode {
	seen[f.ID] = true
	n := TreeNode{ID: f.ID, Name: f.Name, Status: f.Status, Children: []TreeNode{}}
	for _, c := range Children(flows, f.ID) {
		if seen[c.ID] {
			continue
		}
		n.Children = append(n.Children, subtree(flows, c, seen))
	}
	return n
}

func index(flows []models.Flow) map[string]models.Flow {
	m := make(map[string]models.Flow, len(flows))
	for _, f := range flows {
		m[f.ID] = f
	}
	return m
}
