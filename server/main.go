package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/caseflow"
	"github.com/meikuraledutech/caseflow/config"
	"github.com/meikuraledutech/caseflow/logging"
	"github.com/meikuraledutech/caseflow/memory"
	"github.com/meikuraledutech/caseflow/metrics"
	"github.com/meikuraledutech/caseflow/natskv"
	"github.com/meikuraledutech/caseflow/postgres"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(2)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.String("store", cfg.Store), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	mode, _ := caseflow.ParseAppendMode(cfg.AppendMode)
	rec := metrics.New()
	validator, err := caseflow.NewSnapshotValidator()
	if err != nil {
		logger.Error("snapshot schema", slog.Any("error", err))
		os.Exit(1)
	}

	a := &api{
		editor: caseflow.NewEditor(store,
			caseflow.WithAppendMode(mode),
			caseflow.WithLogger(logger),
			caseflow.WithObserver(rec)),
		runner: caseflow.NewRunner(store,
			caseflow.WithStepDelay(cfg.StepDelay),
			caseflow.WithRunLogger(logger),
			caseflow.WithRunObserver(rec)),
		store:     store,
		validator: validator,
		metrics:   rec,
		logger:    logger,
	}

	if cfg.RunSchedule != "" {
		sw := &sweep{store: store, runner: a.runner, logger: logger}
		c, err := sw.schedule(ctx, cfg.RunSchedule)
		if err != nil {
			logger.Error("run schedule", slog.String("spec", cfg.RunSchedule), slog.Any("error", err))
			os.Exit(2)
		}
		c.Start()
		defer c.Stop()
	}

	app := newApp(a)
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	logger.Info("listening", slog.String("addr", cfg.Listen), slog.String("store", cfg.Store))
	if err := app.Listen(cfg.Listen); err != nil {
		logger.Error("listen", slog.Any("error", err))
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == config.LogJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(logging.NewCorrelationHandler(h))
}

func openStore(ctx context.Context, cfg config.Config) (caseflow.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.New(pool)
		if err := s.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil

	case config.StoreNATS:
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, nil, err
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		s, err := natskv.New(ctx, js, cfg.NATSBucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return s, nc.Close, nil

	default:
		return memory.New(), func() {}, nil
	}
}
