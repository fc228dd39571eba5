// Package caseflow models an automation case as a flow graph of setup and
// action nodes, with pure editing operations, a display projection and
// pluggable snapshot storage.
package caseflow

import "fmt"

// NodeKind is the closed set of node variants a case graph can hold.
type NodeKind string

const (
	KindSetup  NodeKind = "setup"
	KindAction NodeKind = "action"
)

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindSetup, KindAction:
		return true
	}
	return false
}

// Layout constants, in canvas units.
const (
	SetupNodeID = "node-setup"
	StepX       = 120.0
	BranchDY    = 100.0
)

// Origin is where the Setup node of a fresh case is placed.
var Origin = Position{X: 50, Y: 150}

// Position is a point in canvas space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single step of a case flow.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Position Position `json:"position"`
	Label    string   `json:"label,omitempty"`
}

// Edge is a directed connection between two nodes.
// Branch edges are never rewired by InsertAfter.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Branch bool   `json:"branch,omitempty"`
}

// Graph is the flow of one automation case. Node order is creation order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph returns the default graph for a case that has no stored snapshot:
// a single Setup node at Origin and no edges.
func NewGraph(caseName string) *Graph {
	return &Graph{
		Nodes: []Node{{ID: SetupNodeID, Kind: KindSetup, Position: Origin, Label: caseName}},
		Edges: []Edge{},
	}
}

// EdgeID derives the id of an edge from its endpoints.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-%s", source, target)
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if i := g.indexOf(id); i >= 0 {
		return g.Nodes[i], true
	}
	return Node{}, false
}

func (g *Graph) indexOf(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Setup returns the Setup node, if present.
func (g *Graph) Setup() (Node, bool) {
	for _, n := range g.Nodes {
		if n.Kind == KindSetup {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving id, in edge order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Equal reports whether g and o hold the same nodes and edges in the same order.
func (g *Graph) Equal(o *Graph) bool {
	if g == nil || o == nil {
		return g == o
	}
	if len(g.Nodes) != len(o.Nodes) || len(g.Edges) != len(o.Edges) {
		return false
	}
	for i := range g.Nodes {
		if g.Nodes[i] != o.Nodes[i] {
			return false
		}
	}
	for i := range g.Edges {
		if g.Edges[i] != o.Edges[i] {
			return false
		}
	}
	return true
}
