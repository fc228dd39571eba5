package caseflow_test

import (
	"strings"
	"testing"

	"github.com/meikuraledutech/caseflow"
	"github.com/stretchr/testify/assert"
)

func TestRenderMermaid(t *testing.T) {
	gen := &seqGen{}
	g, _ := caseflow.AppendAtEnd(caseflow.NewGraph("stale"), caseflow.AppendTail, gen)
	g, _ = caseflow.AddBranch(g, caseflow.SetupNodeID, gen)

	out := caseflow.RenderMermaid(g, `case "001"`)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "flowchart LR", lines[0])
	assert.Contains(t, out, `node_setup(["case '001'"])`)
	assert.Contains(t, out, `node_rec_1["rec_1"]`)
	assert.Contains(t, out, "node_setup --> node_rec_1")
	assert.Contains(t, out, "node_setup -.-> node_branch_2")
	assert.NotContains(t, out, "stale")
}
