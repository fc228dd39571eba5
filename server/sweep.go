package main

import (
	"context"
	"log/slog"

	"github.com/meikuraledutech/caseflow"
	"github.com/robfig/cron/v3"
)

// sweep runs every stored case through the runner. Case ids stand in for
// case names since the store does not keep them.
type sweep struct {
	store  caseflow.Store
	runner *caseflow.Runner
	logger *slog.Logger
}

func (s *sweep) runOnce(ctx context.Context) map[string]caseflow.RunStatus {
	ids, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("sweep: list cases", slog.Any("error", err))
		return nil
	}
	results := make(map[string]caseflow.RunStatus, len(ids))
	for _, id := range ids {
		res, err := s.runner.Run(ctx, id, id, nil)
		if err != nil {
			s.logger.Error("sweep: run case", slog.String("case_id", id), slog.Any("error", err))
			continue
		}
		results[id] = res.Status
	}
	s.logger.Info("sweep finished", slog.Int("cases", len(ids)), slog.Int("completed", len(results)))
	return results
}

// schedule registers the sweep on a new cron scheduler. The caller starts
// and stops it.
func (s *sweep) schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.runOnce(ctx) }); err != nil {
		return nil, err
	}
	return c, nil
}
