package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFlowMarshalWritesDerivedEdges(t *testing.T) {
	f := Flow{
		ID: "f1",
		Connections: []Connection{
			{ID: "c1", From: "n1", To: "n2", Condition: "ok"},
			{ID: "c2", From: "n2"},
		},
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw struct {
		Edges []Edge `json:"edges"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(raw.Edges) != 1 || raw.Edges[0].ID != "en1-n2" {
		t.Errorf("unexpected edges: %+v", raw.Edges)
	}
	if !strings.Contains(string(b), `"parentId":null`) {
		t.Errorf("root flow must serialise parentId as null: %s", b)
	}
}

func TestFlowUnmarshalPromotesLegacyEdges(t *testing.T) {
	data := `{"id":"f1","name":"x","parentId":null,"nodes":[],"connections":[],
		"edges":[{"id":"en1-n2","source":"n1","target":"n2","label":"go"}]}`
	var f Flow
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(f.Connections) != 1 || f.Connections[0].From != "n1" || f.Connections[0].Condition != "go" {
		t.Errorf("edges were not promoted: %+v", f.Connections)
	}
}

func TestFlowUnmarshalPrefersConnections(t *testing.T) {
	data := `{"id":"f1","connections":[{"id":"c","from":"a","to":"b","condition":""}],
		"edges":[{"id":"stale","source":"x","target":"y"}]}`
	var f Flow
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	edges := f.Edges()
	if len(edges) != 1 || edges[0].Source != "a" {
		t.Errorf("stored edges must not override connections: %+v", edges)
	}
}

func TestEdgesFromKeepsIDsUnique(t *testing.T) {
	edges := EdgesFrom([]Connection{
		{ID: "c1", From: "n1", To: "n2", Condition: "yes"},
		{ID: "c2", From: "n1", To: "n2", Condition: "no"},
		{ID: "c3", From: "n2", To: "n1"},
	})
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	want := []string{"en1-n2", "en1-n2-c2", "en2-n1"}
	for i, e := range edges {
		if e.ID != want[i] {
			t.Errorf("edge %d id = %q, want %q", i, e.ID, want[i])
		}
	}
}

func TestAccountProfileDropsSecret(t *testing.T) {
	a := Account{ID: "u1", Email: "a@x.com", PasswordHash: "hash"}
	b, _ := json.Marshal(a.Profile())
	if strings.Contains(string(b), "hash") {
		t.Errorf("profile leaked the credential: %s", b)
	}
}
