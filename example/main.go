package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/caseflow"
	"github.com/meikuraledutech/caseflow/memory"
	"github.com/meikuraledutech/caseflow/postgres"
)

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, in-memory otherwise.
	var store caseflow.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	editor := caseflow.NewEditor(store)
	const caseID, caseName = "1605", "case001"

	// ── Select a fresh case ───────────────────────────────────────────
	g, err := editor.Open(ctx, caseID, caseName)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	fmt.Printf("opened %s with %d node(s)\n", caseID, len(g.Nodes))

	// ── Recording: three taps on the game screen ──────────────────────
	for i := 0; i < 3; i++ {
		if g, err = editor.Append(ctx, caseID); err != nil {
			log.Fatalf("append: %v", err)
		}
	}
	fmt.Println("\nafter recording:")
	printJSON(g)

	// ── Insert a step after setup and open a branch from it ───────────
	if g, err = editor.InsertAfter(ctx, caseID, caseflow.SetupNodeID); err != nil {
		log.Fatalf("insert: %v", err)
	}
	if g, err = editor.AddBranch(ctx, caseID, caseflow.SetupNodeID); err != nil {
		log.Fatalf("branch: %v", err)
	}
	fmt.Println("\nas mermaid:")
	fmt.Println(caseflow.RenderMermaid(g, caseName))

	// ── Projection while node 1 executes ──────────────────────────────
	view, err := editor.View(ctx, caseID, caseName, caseflow.ExecutingAt(1, false))
	if err != nil {
		log.Fatalf("view: %v", err)
	}
	fmt.Printf("\nfocus: %s\n", view.Focus)

	// ── Simulated run ─────────────────────────────────────────────────
	runner := caseflow.NewRunner(store, caseflow.WithStepDelay(0))
	res, err := runner.Run(ctx, caseID, caseName, nil)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	fmt.Println("\nrun result:")
	printJSON(res)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.Delete(ctx, caseID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ncase deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
