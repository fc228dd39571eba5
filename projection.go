package caseflow

// ViewContext carries the transient signals the host supplies for display:
// the index of the node being executed, if any, and the recording flag.
type ViewContext struct {
	Executing *int
	Recording bool
}

// ExecutingAt returns a ViewContext with the executing index set to i.
func ExecutingAt(i int, recording bool) ViewContext {
	return ViewContext{Executing: &i, Recording: recording}
}

// NodeView is a Node annotated with display-only state.
type NodeView struct {
	Node
	IsExecuting bool `json:"isExecuting"`
	IsExecuted  bool `json:"isExecuted"`
	IsRecording bool `json:"isRecording"`
}

// View is the projection of a graph for one render.
type View struct {
	Nodes []NodeView `json:"nodes"`
	Edges []Edge     `json:"edges"`
	// Focus is the id of the node the viewport must centre on; empty when
	// nothing is executing or the index is out of range.
	Focus string `json:"focus,omitempty"`
}

// Project derives the display view of g. The Setup label always comes from
// caseName. g is not modified.
func Project(g *Graph, caseName string, vc ViewContext) *View {
	v := &View{
		Nodes: make([]NodeView, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(v.Edges, g.Edges)

	for i, n := range g.Nodes {
		nv := NodeView{Node: n, IsRecording: vc.Recording}
		if n.Kind == KindSetup {
			nv.Label = caseName
		}
		if vc.Executing != nil {
			nv.IsExecuting = *vc.Executing == i
			nv.IsExecuted = i < *vc.Executing
		}
		v.Nodes[i] = nv
	}

	if vc.Executing != nil && *vc.Executing >= 0 && *vc.Executing < len(g.Nodes) {
		v.Focus = g.Nodes[*vc.Executing].ID
	}
	return v
}
