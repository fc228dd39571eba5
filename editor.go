package caseflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meikuraledutech/caseflow/logging"
)

// Observer receives mutation and run outcomes, e.g. for metrics.
type Observer interface {
	ObserveMutation(op string, applied bool)
	ObserveRun(status RunStatus, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveMutation(string, bool)         {}
func (nopObserver) ObserveRun(RunStatus, time.Duration) {}

// Mutation operation names, as reported to the Observer.
const (
	OpInsertAfter = "insert_after"
	OpAddBranch   = "add_branch"
	OpAppend      = "append"
	OpMove        = "move"
)

// Editor is the editing capability handed to the view layer. It loads the
// working copy of a case from the Store, applies one mutation, and writes the
// result back when the mutation changed something.
//
// Calls are serialised: every operation runs to completion before the next
// one starts.
type Editor struct {
	store    Store
	gen      Generator
	mode     AppendMode
	logger   *slog.Logger
	observer Observer

	mu sync.Mutex
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithGenerator sets the id/label generator for new nodes.
func WithGenerator(g Generator) EditorOption {
	return func(e *Editor) { e.gen = g }
}

// WithAppendMode sets the attachment rule used by Append.
func WithAppendMode(m AppendMode) EditorOption {
	return func(e *Editor) { e.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EditorOption {
	return func(e *Editor) { e.logger = l }
}

// WithObserver sets the mutation observer.
func WithObserver(o Observer) EditorOption {
	return func(e *Editor) { e.observer = o }
}

// NewEditor returns an Editor backed by store.
func NewEditor(store Store, opts ...EditorOption) *Editor {
	e := &Editor{
		store:    store,
		gen:      DefaultGenerator{},
		mode:     AppendTail,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the backing store.
func (e *Editor) Store() Store { return e.store }

// Open returns the working copy for caseID: the stored snapshot verbatim, or
// the default single-Setup graph when nothing is stored. The default graph is
// not persisted until the first mutation.
func (e *Editor) Open(ctx context.Context, caseID, caseName string) (*Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx, caseID, caseName)
}

func (e *Editor) load(ctx context.Context, caseID, caseName string) (*Graph, error) {
	g, err := e.store.Get(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("caseflow: load case %s: %w", caseID, err)
	}
	if g == nil {
		return NewGraph(caseName), nil
	}
	return g, nil
}

// InsertAfter splices a new Action node after afterID. When afterID is
// unknown the graph is returned unchanged and nothing is written.
func (e *Editor) InsertAfter(ctx context.Context, caseID, afterID string) (*Graph, error) {
	return e.apply(ctx, caseID, OpInsertAfter, func(g *Graph) (*Graph, bool) {
		return InsertAfter(g, afterID, e.gen)
	})
}

// AddBranch hangs a new Action node off fromID on a branch edge.
func (e *Editor) AddBranch(ctx context.Context, caseID, fromID string) (*Graph, error) {
	return e.apply(ctx, caseID, OpAddBranch, func(g *Graph) (*Graph, bool) {
		return AddBranch(g, fromID, e.gen)
	})
}

// Append adds one recorded Action node; it is invoked once per recording
// trigger.
func (e *Editor) Append(ctx context.Context, caseID string) (*Graph, error) {
	return e.apply(ctx, caseID, OpAppend, func(g *Graph) (*Graph, bool) {
		return AppendAtEnd(g, e.mode, e.gen)
	})
}

// MoveNode records a drag of nodeID to pos.
func (e *Editor) MoveNode(ctx context.Context, caseID, nodeID string, pos Position) (*Graph, error) {
	return e.apply(ctx, caseID, OpMove, func(g *Graph) (*Graph, bool) {
		return MoveNode(g, nodeID, pos)
	})
}

// Replace overwrites the snapshot of caseID with g after checking its
// invariants. Used for snapshots that were not produced by this Editor.
func (e *Editor) Replace(ctx context.Context, caseID string, g *Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.save(ctx, caseID, g); err != nil {
		return err
	}
	logging.LogWith(logging.WithCaseID(ctx, caseID), e.logger).Info("snapshot replaced",
		slog.Int("nodes", len(g.Nodes)),
		slog.Int("edges", len(g.Edges)))
	return nil
}

// View returns the projection of the stored (or default) graph for caseID.
func (e *Editor) View(ctx context.Context, caseID, caseName string, vc ViewContext) (*View, error) {
	g, err := e.Open(ctx, caseID, caseName)
	if err != nil {
		return nil, err
	}
	return Project(g, caseName, vc), nil
}

func (e *Editor) apply(ctx context.Context, caseID, op string, fn func(*Graph) (*Graph, bool)) (*Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = logging.WithCaseID(ctx, caseID)
	log := logging.LogWith(ctx, e.logger)

	g, err := e.load(ctx, caseID, "")
	if err != nil {
		return nil, err
	}

	next, applied := fn(g)
	e.observer.ObserveMutation(op, applied)
	if !applied {
		log.Debug("mutation was a no-op", slog.String("op", op))
		return g, nil
	}
	if err := e.save(ctx, caseID, next); err != nil {
		return nil, err
	}
	log.Debug("mutation applied",
		slog.String("op", op),
		slog.Int("nodes", len(next.Nodes)),
		slog.Int("edges", len(next.Edges)))
	return next, nil
}

// save writes g unless it has no nodes.
func (e *Editor) save(ctx context.Context, caseID string, g *Graph) error {
	if len(g.Nodes) == 0 {
		return nil
	}
	if err := e.store.Put(ctx, caseID, g); err != nil {
		return fmt.Errorf("caseflow: save case %s: %w", caseID, err)
	}
	return nil
}
