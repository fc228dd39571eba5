// Package memory implements caseflow.Store in process memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/meikuraledutech/caseflow"
)

// MemStore keeps one snapshot per case id. Snapshots are copied on the way
// in and on the way out so callers never share node or edge slices with it.
type MemStore struct {
	mu    sync.RWMutex
	cases map[string]*caseflow.Graph
}

var _ caseflow.Store = (*MemStore)(nil)

// New returns an empty MemStore.
func New() *MemStore {
	return &MemStore{cases: make(map[string]*caseflow.Graph)}
}

// CreateSchema is a no-op.
func (s *MemStore) CreateSchema(context.Context) error { return nil }

// DropSchema removes every stored case.
func (s *MemStore) DropSchema(context.Context) error {
	s.mu.Lock()
	s.cases = make(map[string]*caseflow.Graph)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Get(_ context.Context, caseID string) (*caseflow.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.cases[caseID]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

func (s *MemStore) Put(_ context.Context, caseID string, g *caseflow.Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return caseflow.ErrEmptyGraph
	}
	s.mu.Lock()
	s.cases[strings.Clone(caseID)] = g.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Delete(_ context.Context, caseID string) error {
	s.mu.Lock()
	delete(s.cases, caseID)
	s.mu.Unlock()
	return nil
}

func (s *MemStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.cases))
	for id := range s.cases {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}
