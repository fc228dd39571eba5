package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", CaseID(ctx))
	assert.Equal(t, "", RunID(ctx))

	ctx = WithCaseID(ctx, "1605")
	ctx = WithRunID(ctx, "run-1")

	assert.Equal(t, "1605", CaseID(ctx))
	assert.Equal(t, "run-1", RunID(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRunID(WithCaseID(context.Background(), "1605"), "run-9")
	LogWith(ctx, logger).Info("node appended")

	out := buf.String()
	assert.Contains(t, out, "case_id=1605")
	assert.Contains(t, out, "run_id=run-9")
	assert.Contains(t, out, "node appended")
}

func TestLogWithMissingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogWith(WithCaseID(context.Background(), "only-case"), logger).Info("partial")

	out := buf.String()
	assert.Contains(t, out, "case_id=only-case")
	assert.NotContains(t, out, "run_id")
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCorrelationHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithCaseID(context.Background(), "case-7")
	logger.InfoContext(ctx, "saved")

	assert.Contains(t, buf.String(), "case_id=case-7")
	assert.Contains(t, buf.String(), "saved")
}
