package caseflow_test

import (
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/caseflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotValidator(t *testing.T) {
	v, err := caseflow.NewSnapshotValidator()
	require.NoError(t, err)

	g, _ := caseflow.AppendAtEnd(caseflow.NewGraph("c"), caseflow.AppendTail, &seqGen{})
	body, err := json.Marshal(g)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(body))

	bad := []string{
		`not json`,
		`{"nodes": []}`,
		`{"nodes": [], "edges": []}`,
		`{"nodes": [{"id": "s", "kind": "loop", "position": {"x": 0, "y": 0}}], "edges": []}`,
		`{"nodes": [{"id": "s", "kind": "setup"}], "edges": []}`,
		`{"nodes": [{"id": "s", "kind": "setup", "position": {"x": 0, "y": 0}}], "edges": [{"id": "e"}]}`,
	}
	for _, b := range bad {
		assert.ErrorIs(t, v.Validate([]byte(b)), caseflow.ErrInvalidGraph, b)
	}
}
