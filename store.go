package caseflow

import "context"

// Store defines the contract for persisting case graph snapshots, keyed by
// case id. Put is a total overwrite.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Get returns nil, nil if no snapshot exists for caseID.
	Get(ctx context.Context, caseID string) (*Graph, error)
	Put(ctx context.Context, caseID string, g *Graph) error
	// Delete is not an error if caseID doesn't exist.
	Delete(ctx context.Context, caseID string) error
	// List returns the ids of all stored cases, sorted.
	List(ctx context.Context) ([]string, error)
}
