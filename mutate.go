package caseflow

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Generator mints ids and display labels for new Action nodes.
// prefix is one of "insert", "branch" or "rec".
type Generator interface {
	NodeID(prefix string) string
	Label(prefix string) string
}

// DefaultGenerator uses random UUIDs for ids and a three digit random
// suffix for labels, e.g. "REC_417".
type DefaultGenerator struct{}

func (DefaultGenerator) NodeID(prefix string) string {
	return fmt.Sprintf("node-%s-%s", prefix, uuid.NewString())
}

func (DefaultGenerator) Label(prefix string) string {
	return fmt.Sprintf("%s_%d", labelTag(prefix), rand.IntN(1000))
}

func labelTag(prefix string) string {
	switch prefix {
	case prefixInsert:
		return "INSERT"
	case prefixBranch:
		return "BRANCH"
	case prefixRecord:
		return "REC"
	}
	return "STEP"
}

const (
	prefixInsert = "insert"
	prefixBranch = "branch"
	prefixRecord = "rec"
)

// AppendMode selects the attachment point used by AppendAtEnd.
type AppendMode string

const (
	// AppendTail attaches to the last node in creation order.
	AppendTail AppendMode = "tail"
	// AppendSink attaches to the end of the main line: the node reached by
	// following non-branch edges from Setup.
	AppendSink AppendMode = "sink"
)

// ParseAppendMode accepts "tail", "sink" or "" (tail).
func ParseAppendMode(s string) (AppendMode, error) {
	switch AppendMode(s) {
	case "", AppendTail:
		return AppendTail, nil
	case AppendSink:
		return AppendSink, nil
	}
	return "", fmt.Errorf("caseflow: unknown append mode %q", s)
}

// InsertAfter places a new Action node one step to the right of afterID and
// splices it into afterID's first non-branch outgoing edge. Nodes at or past
// the new column shift right by one step. The second return value is false,
// and g is returned unchanged, when afterID does not exist.
func InsertAfter(g *Graph, afterID string, gen Generator) (*Graph, bool) {
	src, ok := g.Node(afterID)
	if !ok {
		return g, false
	}

	out := g.Clone()
	newNode := Node{
		ID:       gen.NodeID(prefixInsert),
		Kind:     KindAction,
		Position: Position{X: src.Position.X + StepX, Y: src.Position.Y},
		Label:    gen.Label(prefixInsert),
	}

	rewire := -1
	for i, e := range out.Edges {
		if e.Source == afterID && !e.Branch {
			rewire = i
			break
		}
	}
	out.Edges = append(out.Edges, Edge{ID: EdgeID(afterID, newNode.ID), Source: afterID, Target: newNode.ID})
	if rewire >= 0 {
		e := &out.Edges[rewire]
		e.Source = newNode.ID
		e.ID = EdgeID(newNode.ID, e.Target)
	}

	column := newNode.Position.X
	for i := range out.Nodes {
		n := &out.Nodes[i]
		if n.ID != afterID && n.Position.X >= column {
			n.Position.X += StepX
		}
	}
	out.Nodes = append(out.Nodes, newNode)
	return out, true
}

// AddBranch hangs a new Action node diagonally below fromID, connected by a
// branch edge. No other node moves.
func AddBranch(g *Graph, fromID string, gen Generator) (*Graph, bool) {
	src, ok := g.Node(fromID)
	if !ok {
		return g, false
	}

	out := g.Clone()
	newNode := Node{
		ID:       gen.NodeID(prefixBranch),
		Kind:     KindAction,
		Position: Position{X: src.Position.X + StepX, Y: src.Position.Y + BranchDY},
		Label:    gen.Label(prefixBranch),
	}
	out.Nodes = append(out.Nodes, newNode)
	out.Edges = append(out.Edges, Edge{ID: EdgeID(fromID, newNode.ID), Source: fromID, Target: newNode.ID, Branch: true})
	return out, true
}

// AppendAtEnd adds a recorded Action node to the right of the attachment
// node chosen by mode. With AppendTail this is the last node in creation
// order even when that node is a branch leaf. An empty graph is returned
// unchanged.
func AppendAtEnd(g *Graph, mode AppendMode, gen Generator) (*Graph, bool) {
	tail, ok := attachPoint(g, mode)
	if !ok {
		return g, false
	}

	out := g.Clone()
	newNode := Node{
		ID:       gen.NodeID(prefixRecord),
		Kind:     KindAction,
		Position: Position{X: tail.Position.X + StepX, Y: tail.Position.Y},
		Label:    gen.Label(prefixRecord),
	}
	out.Nodes = append(out.Nodes, newNode)
	out.Edges = append(out.Edges, Edge{ID: EdgeID(tail.ID, newNode.ID), Source: tail.ID, Target: newNode.ID})
	return out, true
}

func attachPoint(g *Graph, mode AppendMode) (Node, bool) {
	if len(g.Nodes) == 0 {
		return Node{}, false
	}
	if mode == AppendSink {
		if n, ok := mainLineEnd(g); ok {
			return n, true
		}
	}
	return g.Nodes[len(g.Nodes)-1], true
}

// mainLineEnd follows first non-branch edges from the Setup node until it
// reaches a node with none.
func mainLineEnd(g *Graph) (Node, bool) {
	cur, ok := g.Setup()
	if !ok {
		return Node{}, false
	}
	seen := map[string]bool{cur.ID: true}
	for {
		next := ""
		for _, e := range g.Edges {
			if e.Source == cur.ID && !e.Branch {
				next = e.Target
				break
			}
		}
		if next == "" || seen[next] {
			return cur, true
		}
		n, ok := g.Node(next)
		if !ok {
			return cur, true
		}
		seen[next] = true
		cur = n
	}
}

// MoveNode sets the position of id, as reported by a free-form drag.
func MoveNode(g *Graph, id string, pos Position) (*Graph, bool) {
	i := g.indexOf(id)
	if i < 0 {
		return g, false
	}
	if g.Nodes[i].Position == pos {
		return g, false
	}
	out := g.Clone()
	out.Nodes[i].Position = pos
	return out, true
}
