package main

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/caseflow"
	"github.com/meikuraledutech/caseflow/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type api struct {
	editor    *caseflow.Editor
	runner    *caseflow.Runner
	store     caseflow.Store
	validator *caseflow.SnapshotValidator
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

func newApp(a *api) *fiber.App {
	// Params are kept past the request (store keys, edge endpoints), so they
	// must not alias fasthttp's reused buffers.
	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(recoverer.New())
	app.Use(a.requestLog)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.metrics.Registry(), promhttp.HandlerOpts{})))

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := a.store.CreateSchema(c.Context()); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := a.store.DropSchema(c.Context()); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Snapshots ─────────────────────────────────────────────────────
	app.Get("/cases", func(c fiber.Ctx) error {
		ids, err := a.store.List(c.Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(ids)
	})

	app.Get("/cases/:id", func(c fiber.Ctx) error {
		g, err := a.store.Get(c.Context(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		if g == nil {
			return writeError(c, errCaseNotFound)
		}
		return c.JSON(g)
	})

	app.Put("/cases/:id", func(c fiber.Ctx) error {
		body := c.Body()
		if err := a.validator.Validate(body); err != nil {
			return writeError(c, err)
		}
		var g caseflow.Graph
		if err := json.Unmarshal(body, &g); err != nil {
			return writeError(c, errInvalidBody)
		}
		if err := a.editor.Replace(c.Context(), c.Params("id"), &g); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Delete("/cases/:id", func(c fiber.Ctx) error {
		if err := a.store.Delete(c.Context(), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// ── Editing ───────────────────────────────────────────────────────
	app.Post("/cases/:id/open", func(c fiber.Ctx) error {
		g, err := a.editor.Open(c.Context(), c.Params("id"), c.Query("name"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Post("/cases/:id/nodes/:node/insert", func(c fiber.Ctx) error {
		g, err := a.editor.InsertAfter(c.Context(), c.Params("id"), c.Params("node"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Post("/cases/:id/nodes/:node/branch", func(c fiber.Ctx) error {
		g, err := a.editor.AddBranch(c.Context(), c.Params("id"), c.Params("node"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Put("/cases/:id/nodes/:node/position", func(c fiber.Ctx) error {
		var pos caseflow.Position
		if err := c.Bind().JSON(&pos); err != nil {
			return writeError(c, errInvalidBody)
		}
		g, err := a.editor.MoveNode(c.Context(), c.Params("id"), c.Params("node"), pos)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	app.Post("/cases/:id/append", func(c fiber.Ctx) error {
		g, err := a.editor.Append(c.Context(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(g)
	})

	// ── Display ───────────────────────────────────────────────────────
	app.Get("/cases/:id/view", func(c fiber.Ctx) error {
		vc, err := viewContext(c)
		if err != nil {
			return writeError(c, err)
		}
		v, err := a.editor.View(c.Context(), c.Params("id"), c.Query("name"), vc)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(v)
	})

	app.Get("/cases/:id/mermaid", func(c fiber.Ctx) error {
		g, err := a.editor.Open(c.Context(), c.Params("id"), c.Query("name"))
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(caseflow.RenderMermaid(g, c.Query("name")))
	})

	// ── Execution ─────────────────────────────────────────────────────
	app.Post("/cases/:id/run", func(c fiber.Ctx) error {
		res, err := a.runner.Run(c.Context(), c.Params("id"), c.Query("name"), nil)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(res)
	})

	return app
}

// viewContext reads ?executing=<int>&recording=<bool>.
func viewContext(c fiber.Ctx) (caseflow.ViewContext, error) {
	var vc caseflow.ViewContext
	if raw := c.Query("executing"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return vc, errInvalidBody.Clone()
		}
		vc.Executing = &i
	}
	if raw := c.Query("recording"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return vc, errInvalidBody.Clone()
		}
		vc.Recording = b
	}
	return vc, nil
}

func (a *api) requestLog(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	a.logger.Debug("request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("latency", time.Since(start)))
	return err
}
