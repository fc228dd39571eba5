package caseflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meikuraledutech/caseflow"
	"github.com/meikuraledutech/caseflow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often Put is called.
type countingStore struct {
	*memory.MemStore
	puts int
}

func (s *countingStore) Put(ctx context.Context, caseID string, g *caseflow.Graph) error {
	s.puts++
	return s.MemStore.Put(ctx, caseID, g)
}

type failingStore struct{ *memory.MemStore }

func (failingStore) Put(context.Context, string, *caseflow.Graph) error {
	return errors.New("disk full")
}

type recordingObserver struct {
	mutations map[string][]bool
	runs      []caseflow.RunStatus
}

func (o *recordingObserver) ObserveMutation(op string, applied bool) {
	if o.mutations == nil {
		o.mutations = map[string][]bool{}
	}
	o.mutations[op] = append(o.mutations[op], applied)
}

func (o *recordingObserver) ObserveRun(s caseflow.RunStatus, _ time.Duration) {
	o.runs = append(o.runs, s)
}

func TestEditorOpenDefault(t *testing.T) {
	store := &countingStore{MemStore: memory.New()}
	ed := caseflow.NewEditor(store)

	g, err := ed.Open(context.Background(), "1605", "case001")
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, "case001", g.Nodes[0].Label)
	assert.Zero(t, store.puts, "opening a fresh case does not persist it")

	ids, _ := store.List(context.Background())
	assert.Empty(t, ids)
}

func TestEditorOpenLoadsVerbatim(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	g := caseflow.NewGraph("c")
	g.Nodes[0].Position = caseflow.Position{X: 7, Y: 9}
	require.NoError(t, store.Put(ctx, "c", g))

	got, err := caseflow.NewEditor(store).Open(ctx, "c", "c")
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
}

func TestEditorPutsOnlyApplied(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemStore: memory.New()}
	obs := &recordingObserver{}
	ed := caseflow.NewEditor(store, caseflow.WithGenerator(&seqGen{}), caseflow.WithObserver(obs))

	_, err := ed.InsertAfter(ctx, "c", "nonexistent")
	require.NoError(t, err)
	assert.Zero(t, store.puts)

	g, err := ed.InsertAfter(ctx, "c", caseflow.SetupNodeID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.puts)
	assert.Len(t, g.Nodes, 2)

	_, err = ed.AddBranch(ctx, "c", "nonexistent")
	require.NoError(t, err)
	_, err = ed.AddBranch(ctx, "c", caseflow.SetupNodeID)
	require.NoError(t, err)
	_, err = ed.MoveNode(ctx, "c", caseflow.SetupNodeID, caseflow.Position{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, store.puts)

	stored, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 3)
	assert.Equal(t, caseflow.Position{X: 1, Y: 2}, stored.Nodes[0].Position)

	assert.Equal(t, []bool{false, true}, obs.mutations[caseflow.OpInsertAfter])
	assert.Equal(t, []bool{false, true}, obs.mutations[caseflow.OpAddBranch])
	assert.Equal(t, []bool{true}, obs.mutations[caseflow.OpMove])
}

func TestEditorSaveError(t *testing.T) {
	ed := caseflow.NewEditor(failingStore{memory.New()})
	_, err := ed.Append(context.Background(), "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestEditorAppendMode(t *testing.T) {
	ctx := context.Background()
	ed := caseflow.NewEditor(memory.New(), caseflow.WithGenerator(&seqGen{}), caseflow.WithAppendMode(caseflow.AppendSink))

	g, err := ed.Append(ctx, "c")
	require.NoError(t, err)
	main := g.Nodes[1].ID
	_, err = ed.AddBranch(ctx, "c", caseflow.SetupNodeID)
	require.NoError(t, err)

	g, err = ed.Append(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, targets(g, main), 1)
}

// TestRecordingThenExecuting is the end-to-end flow: three recording
// triggers on a fresh case, then the host starts executing at index 1.
func TestRecordingThenExecuting(t *testing.T) {
	ctx := context.Background()
	ed := caseflow.NewEditor(memory.New())

	var g *caseflow.Graph
	var err error
	for i := 0; i < 3; i++ {
		g, err = ed.Append(ctx, "1605")
		require.NoError(t, err)
	}

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, caseflow.KindSetup, g.Nodes[0].Kind)
	for i := 1; i < 4; i++ {
		assert.Equal(t, caseflow.KindAction, g.Nodes[i].Kind)
		assert.Equal(t, []string{g.Nodes[i].ID}, targets(g, g.Nodes[i-1].ID))
	}
	assert.Empty(t, targets(g, g.Nodes[3].ID))

	v, err := ed.View(ctx, "1605", "case001", caseflow.ExecutingAt(1, false))
	require.NoError(t, err)
	assert.True(t, v.Nodes[0].IsExecuted)
	assert.True(t, v.Nodes[1].IsExecuting)
	assert.False(t, v.Nodes[2].IsExecuting)
	assert.False(t, v.Nodes[2].IsExecuted)
	assert.Equal(t, g.Nodes[1].ID, v.Focus)
}

func TestEditorReplace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ed := caseflow.NewEditor(store)

	bad := &caseflow.Graph{Nodes: []caseflow.Node{{ID: "a", Kind: caseflow.KindAction}}}
	assert.ErrorIs(t, ed.Replace(ctx, "c", bad), caseflow.ErrInvalidGraph)
	got, _ := store.Get(ctx, "c")
	assert.Nil(t, got)

	g, _ := caseflow.AppendAtEnd(caseflow.NewGraph("c"), caseflow.AppendTail, &seqGen{})
	require.NoError(t, ed.Replace(ctx, "c", g))
	got, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
}
