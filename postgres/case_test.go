package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/caseflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to DATABASE_URL and recreates the schema.
// The test is skipped when no database is configured.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))
	t.Cleanup(func() { _ = s.DropSchema(context.Background()) })
	return s
}

func TestPutGetKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	gen := caseflow.DefaultGenerator{}

	g := caseflow.NewGraph("case001")
	g, _ = caseflow.AppendAtEnd(g, caseflow.AppendTail, gen)
	g, _ = caseflow.AppendAtEnd(g, caseflow.AppendTail, gen)
	g, _ = caseflow.AddBranch(g, caseflow.SetupNodeID, gen)
	g, _ = caseflow.InsertAfter(g, caseflow.SetupNodeID, gen)

	require.NoError(t, s.Put(ctx, "1605", g))
	got, err := s.Get(ctx, "1605")
	require.NoError(t, err)
	assert.True(t, g.Equal(got), "stored %+v, got %+v", g, got)
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := caseflow.NewGraph("a")
	g, _ = caseflow.AppendAtEnd(g, caseflow.AppendTail, caseflow.DefaultGenerator{})
	require.NoError(t, s.Put(ctx, "c", g))
	require.NoError(t, s.Put(ctx, "c", caseflow.NewGraph("b")))

	got, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)
}

func TestGetMissingAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Put(ctx, "x", caseflow.NewGraph("x")))
	require.NoError(t, s.Put(ctx, "y", caseflow.NewGraph("y")))
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids)

	require.NoError(t, s.Delete(ctx, "x"))
	got, err = s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, got)
}
