package caseflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/meikuraledutech/caseflow"
	"github.com/meikuraledutech/caseflow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCase(t *testing.T, store caseflow.Store, caseID string, actions int) {
	t.Helper()
	ed := caseflow.NewEditor(store)
	for i := 0; i < actions; i++ {
		_, err := ed.Append(context.Background(), caseID)
		require.NoError(t, err)
	}
}

func TestRunWalksEveryNode(t *testing.T) {
	store := memory.New()
	seedCase(t, store, "1605", 2)
	obs := &recordingObserver{}

	r := caseflow.NewRunner(store,
		caseflow.WithStepDelay(0),
		caseflow.WithOutcome(func() caseflow.RunStatus { return caseflow.RunFail }),
		caseflow.WithRunObserver(obs),
	)

	var focus []string
	res, err := r.Run(context.Background(), "1605", "case001", func(v *caseflow.View) {
		focus = append(focus, v.Focus)
	})
	require.NoError(t, err)

	g, _ := store.Get(context.Background(), "1605")
	assert.Equal(t, []string{g.Nodes[0].ID, g.Nodes[1].ID, g.Nodes[2].ID}, focus)
	assert.Equal(t, caseflow.RunFail, res.Status)
	assert.Equal(t, "1605", res.CaseID)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Steps, 3)
	assert.Equal(t, "case001", res.Steps[0].Label)
	assert.Equal(t, "setup", res.Steps[0].Kind)
	assert.Equal(t, []caseflow.RunStatus{caseflow.RunFail}, obs.runs)
}

func TestRunMissingCase(t *testing.T) {
	r := caseflow.NewRunner(memory.New(), caseflow.WithStepDelay(0))
	_, err := r.Run(context.Background(), "nope", "", nil)
	assert.ErrorIs(t, err, caseflow.ErrCaseNotFound)
}

func TestRunCancelled(t *testing.T) {
	store := memory.New()
	seedCase(t, store, "c", 3)

	ctx, cancel := context.WithCancel(context.Background())
	r := caseflow.NewRunner(store, caseflow.WithStepDelay(time.Hour))

	steps := 0
	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx, "c", "c", func(*caseflow.View) { steps++ })
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	assert.LessOrEqual(t, steps, 1)
}

func TestRunDefaultOutcomeIsPassOrFail(t *testing.T) {
	store := memory.New()
	seedCase(t, store, "c", 1)
	r := caseflow.NewRunner(store, caseflow.WithStepDelay(0))
	for i := 0; i < 20; i++ {
		res, err := r.Run(context.Background(), "c", "c", nil)
		require.NoError(t, err)
		assert.Contains(t, []caseflow.RunStatus{caseflow.RunPass, caseflow.RunFail}, res.Status)
	}
}
