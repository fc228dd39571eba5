package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS case_nodes (
    case_id    TEXT NOT NULL,
    id         TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    kind       TEXT NOT NULL CHECK (kind IN ('setup', 'action')),
    label      TEXT NOT NULL DEFAULT '',
    x          DOUBLE PRECISION NOT NULL,
    y          DOUBLE PRECISION NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (case_id, id)
);

CREATE TABLE IF NOT EXISTS case_edges (
    case_id TEXT NOT NULL,
    id      TEXT NOT NULL,
    seq     INTEGER NOT NULL,
    source  TEXT NOT NULL,
    target  TEXT NOT NULL,
    branch  BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (case_id, id),
    FOREIGN KEY (case_id, source) REFERENCES case_nodes(case_id, id) ON DELETE CASCADE,
    FOREIGN KEY (case_id, target) REFERENCES case_nodes(case_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_case_nodes_case_seq ON case_nodes(case_id, seq);
CREATE INDEX IF NOT EXISTS idx_case_edges_case_seq ON case_edges(case_id, seq);
`

// CreateSchema creates the case_nodes and case_edges tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the case_edges and case_nodes tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS case_edges, case_nodes CASCADE;`)
	return err
}
