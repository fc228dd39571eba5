package caseflow_test

import (
	"fmt"

	"github.com/meikuraledutech/caseflow"
)

// seqGen mints predictable ids: node-<prefix>-1, node-<prefix>-2, ...
type seqGen struct{ n int }

func (g *seqGen) NodeID(prefix string) string {
	g.n++
	return fmt.Sprintf("node-%s-%d", prefix, g.n)
}

func (g *seqGen) Label(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, g.n)
}

var _ caseflow.Generator = (*seqGen)(nil)

// targets returns the targets of source's outgoing edges.
func targets(g *caseflow.Graph, source string) []string {
	var out []string
	for _, e := range g.Outgoing(source) {
		out = append(out, e.Target)
	}
	return out
}
