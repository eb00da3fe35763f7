package models

import (
	"encoding/json"
	"time"
)

// Flow is one flowchart of a project, optionally nested under another flow.
type Flow struct {
	// ID is the unique identifier for the flow.
	ID string `json:"id"`
	// Name is the flow title shown in the breadcrumb.
	Name string `json:"name"`
	// ParentID references another flow of the same project; nil for a root flow.
	ParentID *string `json:"parentId"`
	// Status is a project status id.
	Status string `json:"status"`
	// Nodes are the process boxes of the flow.
	Nodes []Node `json:"nodes"`
	// Connections are the authoritative transitions between nodes.
	Connections []Connection `json:"connections"`
}

// IsRoot reports whether the flow has no parent.
func (f *Flow) IsRoot() bool {
	return f.ParentID == nil || *f.ParentID == ""
}

// Parent returns the parent id or "" for a root flow.
func (f *Flow) Parent() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// NodeIndex returns the position of the node with the given id, or -1.
func (f *Flow) NodeIndex(id string) int {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Edges renders the connection table as edges. Rows missing either endpoint are skipped.
func (f *Flow) Edges() []Edge {
	return EdgesFrom(f.Connections)
}

type flowJSON Flow

// MarshalJSON writes the derived edge list next to the connections so stored
// flows keep the same layout readers expect.
func (f Flow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		flowJSON
		Edges []Edge `json:"edges"`
	}{flowJSON(f), f.Edges()})
}

// UnmarshalJSON ignores stored edges unless the flow has no connections at all,
// in which case the edges are promoted to connections.
func (f *Flow) UnmarshalJSON(data []byte) error {
	var aux struct {
		flowJSON
		Edges []Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = Flow(aux.flowJSON)
	if len(f.Connections) == 0 && len(aux.Edges) > 0 {
		for _, e := range aux.Edges {
			f.Connections = append(f.Connections, Connection{
				ID:        e.ID,
				From:      e.Source,
				To:        e.Target,
				Condition: e.Label,
			})
		}
	}
	return nil
}

// Connection is an explicit from/to/condition record between two nodes.
type Connection struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition"`
}

// Complete reports whether both endpoints are set.
func (c Connection) Complete() bool {
	return c.From != "" && c.To != ""
}

// Edge is the rendering form of a connection.
type Edge struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Label     string    `json:"label,omitempty"`
	Animated  bool      `json:"animated"`
	MarkerEnd Marker    `json:"markerEnd"`
	Style     EdgeStyle `json:"style"`
}

// Marker describes an arrow head.
type Marker struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// EdgeStyle is the stroke of an edge.
type EdgeStyle struct {
	Stroke      string `json:"stroke"`
	StrokeWidth int    `json:"strokeWidth"`
}

// EdgeColor is the stroke and arrow color used for every edge.
const EdgeColor = "#667eea"

// EdgesFrom maps complete connections to edges with the fixed arrow styling.
// Edge ids are "e{from}-{to}"; repeated links between the same pair get the
// connection id appended so ids stay unique.
func EdgesFrom(conns []Connection) []Edge {
	edges := make([]Edge, 0, len(conns))
	seen := make(map[string]bool, len(conns))
	for _, c := range conns {
		if !c.Complete() {
			continue
		}
		id := "e" + c.From + "-" + c.To
		if seen[id] {
			id += "-" + c.ID
		}
		seen[id] = true
		edges = append(edges, Edge{
			ID:        id,
			Source:    c.From,
			Target:    c.To,
			Label:     c.Condition,
			MarkerEnd: Marker{Type: "arrowclosed", Color: EdgeColor},
			Style:     EdgeStyle{Stroke: EdgeColor, StrokeWidth: 2},
		})
	}
	return edges
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one process box in a flow.
type Node struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Position Position  `json:"position"`
	Data     NodeData  `json:"data"`
	Style    NodeStyle `json:"style"`
}

// NodeData carries the presentation, documentation and operational records of a node.
type NodeData struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Shape       string `json:"shape"`
	HasSubFlow  bool   `json:"hasSubFlow"`
	// SubFlowID is a non-owning reference into the project's flow list.
	SubFlowID    *string         `json:"subFlowId"`
	Status       string          `json:"status"`
	Document     Document        `json:"document"`
	Metrics      []Metric        `json:"metrics"`
	Improvements []Improvement   `json:"improvements"`
	Checklist    []ChecklistItem `json:"checklist"`
	Risks        []Risk          `json:"risks"`
}

// SubFlow returns the referenced sub-flow id or "".
func (d *NodeData) SubFlow() string {
	if d.SubFlowID == nil {
		return ""
	}
	return *d.SubFlowID
}

// NodeStyle is the visual attribute set derived from shape and color.
type NodeStyle struct {
	Background   string `json:"background"`
	Color        string `json:"color"`
	Border       string `json:"border"`
	BorderRadius string `json:"borderRadius"`
	Transform    string `json:"transform,omitempty"`
	Width        string `json:"width,omitempty"`
	Height       string `json:"height,omitempty"`
}

// Metric is a KPI tracked on a node.
type Metric struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Target    float64   `json:"target"`
	Current   float64   `json:"current"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

// Improvement is a PDCA-tagged improvement action.
type Improvement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Cycle       string    `json:"cycle"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChecklistItem is a single check on a node.
type ChecklistItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Checked     bool      `json:"checked"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Risk is a risk entry with its mitigation.
type Risk struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	Mitigation  string    `json:"mitigation"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is a markdown document with embedded images and a save log.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Images    []Image           `json:"images"`
	Versions  []DocumentVersion `json:"versions"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// LatestVersion returns the version of the last save, or "" if never saved.
func (d *Document) LatestVersion() string {
	if len(d.Versions) == 0 {
		return ""
	}
	return d.Versions[len(d.Versions)-1].Version
}

// Image is an embedded image referenced from markdown by id.
type Image struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// DocumentVersion is one entry of the append-only save log.
type DocumentVersion struct {
	Version string    `json:"version"`
	Title   string    `json:"title"`
	SavedAt time.Time `json:"savedAt"`
	Changes string    `json:"changes"`
}
