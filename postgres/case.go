// Package postgres implements caseflow.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/caseflow"
)

// PGStore keeps case snapshots in PostgreSQL, one row per node and edge.
type PGStore struct {
	db *pgxpool.Pool
}

var _ caseflow.Store = (*PGStore)(nil)

// New returns a PGStore using pool.
func New(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

// Put replaces the snapshot of a case (nodes + edges) in one transaction.
// Node and edge order is kept in the seq column.
func (s *PGStore) Put(ctx context.Context, caseID string, g *caseflow.Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return caseflow.ErrEmptyGraph
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("caseflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM case_edges WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("caseflow: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM case_nodes WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("caseflow: delete nodes: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"case_nodes"},
		[]string{"case_id", "id", "seq", "kind", "label", "x", "y"},
		pgx.CopyFromSlice(len(g.Nodes), func(i int) ([]any, error) {
			n := g.Nodes[i]
			return []any{caseID, n.ID, i, string(n.Kind), n.Label, n.Position.X, n.Position.Y}, nil
		}),
	); err != nil {
		return fmt.Errorf("caseflow: insert nodes: %w", err)
	}

	if len(g.Edges) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"case_edges"},
			[]string{"case_id", "id", "seq", "source", "target", "branch"},
			pgx.CopyFromSlice(len(g.Edges), func(i int) ([]any, error) {
				e := g.Edges[i]
				return []any{caseID, e.ID, i, e.Source, e.Target, e.Branch}, nil
			}),
		); err != nil {
			return fmt.Errorf("caseflow: insert edges: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("caseflow: commit: %w", err)
	}
	return nil
}

// Get retrieves the snapshot of a case.
// Returns nil, nil if no nodes exist for caseID.
func (s *PGStore) Get(ctx context.Context, caseID string) (*caseflow.Graph, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, kind, label, x, y FROM case_nodes WHERE case_id = $1 ORDER BY seq`, caseID)
	if err != nil {
		return nil, fmt.Errorf("caseflow: query nodes: %w", err)
	}
	nodes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (caseflow.Node, error) {
		var n caseflow.Node
		var kind string
		err := row.Scan(&n.ID, &kind, &n.Label, &n.Position.X, &n.Position.Y)
		n.Kind = caseflow.NodeKind(kind)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("caseflow: scan nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	rows, err = s.db.Query(ctx,
		`SELECT id, source, target, branch FROM case_edges WHERE case_id = $1 ORDER BY seq`, caseID)
	if err != nil {
		return nil, fmt.Errorf("caseflow: query edges: %w", err)
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (caseflow.Edge, error) {
		var e caseflow.Edge
		err := row.Scan(&e.ID, &e.Source, &e.Target, &e.Branch)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("caseflow: scan edges: %w", err)
	}

	return &caseflow.Graph{Nodes: nodes, Edges: edges}, nil
}

// Delete removes all nodes and edges of a case.
// No error if the case doesn't exist.
func (s *PGStore) Delete(ctx context.Context, caseID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("caseflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM case_edges WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("caseflow: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM case_nodes WHERE case_id = $1`, caseID); err != nil {
		return fmt.Errorf("caseflow: delete nodes: %w", err)
	}

	return tx.Commit(ctx)
}

// List returns the ids of all stored cases.
func (s *PGStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT case_id FROM case_nodes ORDER BY case_id`)
	if err != nil {
		return nil, fmt.Errorf("caseflow: list cases: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("caseflow: scan case ids: %w", err)
	}
	return ids, nil
}
