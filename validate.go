package caseflow

import "fmt"

// Validate checks the structural invariants of a case graph: exactly one
// Setup node with no incoming edges, unique node ids, unique edge ids with at
// most one edge per (source, target) pair, edges between known nodes, no
// cycles, and every node reachable from Setup.
//
// The mutation operations keep these invariants by construction; Validate
// exists for snapshots that arrive from outside (uploads, other stores).
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}

	ids := make(map[string]struct{}, len(g.Nodes))
	setups := 0
	var setupID string
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node with empty id", ErrInvalidGraph)
		}
		if !n.Kind.Valid() {
			return fmt.Errorf("%w: node %s has unknown kind %q", ErrInvalidGraph, n.ID, n.Kind)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %s", ErrInvalidGraph, n.ID)
		}
		ids[n.ID] = struct{}{}
		if n.Kind == KindSetup {
			setups++
			setupID = n.ID
		}
	}
	if setups != 1 {
		return fmt.Errorf("%w: expected exactly one setup node, found %d", ErrInvalidGraph, setups)
	}

	edgeIDs := make(map[string]struct{}, len(g.Edges))
	pairs := make(map[[2]string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID == "" {
			return fmt.Errorf("%w: edge with empty id", ErrInvalidGraph)
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge id %s", ErrInvalidGraph, e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		pair := [2]string{e.Source, e.Target}
		if _, dup := pairs[pair]; dup {
			return fmt.Errorf("%w: duplicate edge %s -> %s", ErrInvalidGraph, e.Source, e.Target)
		}
		pairs[pair] = struct{}{}
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("%w: edge %s: unknown source %s", ErrInvalidGraph, e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("%w: edge %s: unknown target %s", ErrInvalidGraph, e.ID, e.Target)
		}
		if e.Target == setupID {
			return fmt.Errorf("%w: edge %s points into the setup node", ErrInvalidGraph, e.ID)
		}
	}

	if err := validateAcyclic(g.Nodes, g.Edges); err != nil {
		return err
	}

	reached := reachableFrom(setupID, g.Edges)
	for _, n := range g.Nodes {
		if _, ok := reached[n.ID]; !ok {
			return fmt.Errorf("%w: node %s is not reachable from setup", ErrInvalidGraph, n.ID)
		}
	}
	return nil
}

// validateAcyclic checks that the edges don't form a cycle using DFS.
func validateAcyclic(nodes []Node, edges []Edge) error {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		state[n.ID] = unvisited
		order = append(order, n.ID)
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range order {
		if state[id] == unvisited && dfs(id) {
			return ErrCycleDetected
		}
	}
	return nil
}

func reachableFrom(root string, edges []Edge) map[string]struct{} {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	seen := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return seen
}
