package caseflow

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/caseflow/logging"
)

// RunStatus is the outcome of a simulated case run.
type RunStatus string

const (
	RunPass RunStatus = "pass"
	RunFail RunStatus = "fail"
)

// DefaultStepDelay is the pause between two executed nodes.
const DefaultStepDelay = 1200 * time.Millisecond

// StepResult records one executed node.
type StepResult struct {
	Index  int    `json:"index"`
	NodeID string `json:"id"`
	Kind   string `json:"kind"`
	Label  string `json:"label,omitempty"`
	Result string `json:"result"`
}

// RunResult is the report of one simulated run.
type RunResult struct {
	RunID     string        `json:"run_id"`
	CaseID    string        `json:"case_id"`
	Status    RunStatus     `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Steps     []StepResult  `json:"steps"`
}

// Runner simulates executing a case: it walks the executing index over the
// node sequence with a fixed delay, then draws a random outcome. Nothing is
// dispatched to a device.
type Runner struct {
	store    Store
	delay    time.Duration
	outcome  func() RunStatus
	logger   *slog.Logger
	observer Observer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStepDelay sets the pause between steps. Zero disables it.
func WithStepDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.delay = d }
}

// WithOutcome replaces the random pass/fail draw.
func WithOutcome(fn func() RunStatus) RunnerOption {
	return func(r *Runner) { r.outcome = fn }
}

// WithRunLogger sets the logger.
func WithRunLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRunObserver sets the run observer.
func WithRunObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// NewRunner returns a Runner reading graphs from store.
func NewRunner(store Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:    store,
		delay:    DefaultStepDelay,
		outcome:  randomOutcome,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// randomOutcome passes nine runs out of ten.
func randomOutcome() RunStatus {
	if rand.Float64() > 0.1 {
		return RunPass
	}
	return RunFail
}

// Run executes the stored graph of caseID. onStep, if non-nil, receives the
// projection for each executing index in turn. A cancelled context stops the
// run between steps and its error is returned.
func (r *Runner) Run(ctx context.Context, caseID, caseName string, onStep func(*View)) (*RunResult, error) {
	g, err := r.store.Get(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("caseflow: load case %s: %w", caseID, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	res := &RunResult{
		RunID:     uuid.NewString(),
		CaseID:    caseID,
		StartedAt: time.Now(),
		Steps:     make([]StepResult, 0, len(g.Nodes)),
	}
	ctx = logging.WithRunID(logging.WithCaseID(ctx, caseID), res.RunID)
	log := logging.LogWith(ctx, r.logger)
	log.Info("run started", slog.Int("nodes", len(g.Nodes)))

	for i, n := range g.Nodes {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", slog.Int("index", i))
			return nil, err
		}
		if onStep != nil {
			onStep(Project(g, caseName, ExecutingAt(i, false)))
		}
		label := n.Label
		if n.Kind == KindSetup {
			label = caseName
		}
		res.Steps = append(res.Steps, StepResult{
			Index:  i,
			NodeID: n.ID,
			Kind:   string(n.Kind),
			Label:  label,
			Result: "ok",
		})
		if err := r.wait(ctx); err != nil {
			log.Warn("run cancelled", slog.Int("index", i))
			return nil, err
		}
	}

	res.Status = r.outcome()
	res.Duration = time.Since(res.StartedAt)
	r.observer.ObserveRun(res.Status, res.Duration)
	log.Info("run finished", slog.String("status", string(res.Status)), slog.Duration("duration", res.Duration))
	return res, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return nil
	}
	t := time.NewTimer(r.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
