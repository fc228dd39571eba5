package main

import (
	"context"
	stderrors "errors"

	"github.com/gofiber/fiber/v3"
	apperrors "github.com/goliatone/go-errors"
	"github.com/meikuraledutech/caseflow"
)

const (
	codeInvalidBody   = "INVALID_BODY"
	codeInvalidGraph  = "INVALID_GRAPH"
	codeInvalidCaseID = "INVALID_CASE_ID"
	codeCycleDetected = "CYCLE_DETECTED"
	codeCaseNotFound  = "CASE_NOT_FOUND"
	codeCancelled     = "CANCELLED"
	codeInternal      = "INTERNAL"
)

var (
	errInvalidBody = apperrors.New("invalid body", apperrors.CategoryBadInput).
			WithTextCode(codeInvalidBody)
	errInvalidGraph = apperrors.New("invalid graph", apperrors.CategoryBadInput).
			WithTextCode(codeInvalidGraph)
	errInvalidCaseID = apperrors.New("invalid case id", apperrors.CategoryBadInput).
				WithTextCode(codeInvalidCaseID)
	errCycleDetected = apperrors.New("cycle detected", apperrors.CategoryConflict).
				WithTextCode(codeCycleDetected)
	errCaseNotFound = apperrors.New("case not found", apperrors.CategoryNotFound).
			WithTextCode(codeCaseNotFound)
	errCancelled = apperrors.New("request cancelled", apperrors.CategoryConflict).
			WithTextCode(codeCancelled)
	errInternal = apperrors.New("internal error", apperrors.CategoryInternal).
			WithTextCode(codeInternal)
)

var statusByCode = map[string]int{
	codeInvalidBody:   fiber.StatusBadRequest,
	codeInvalidGraph:  fiber.StatusUnprocessableEntity,
	codeInvalidCaseID: fiber.StatusBadRequest,
	codeCycleDetected: fiber.StatusUnprocessableEntity,
	codeCaseNotFound:  fiber.StatusNotFound,
	codeCancelled:     fiber.StatusRequestTimeout,
	codeInternal:      fiber.StatusInternalServerError,
}

// classify maps a domain error onto an API error carrying a text code.
func classify(err error) *apperrors.Error {
	var ae *apperrors.Error
	if stderrors.As(err, &ae) {
		return ae
	}

	var base *apperrors.Error
	switch {
	case stderrors.Is(err, caseflow.ErrCycleDetected):
		base = errCycleDetected
	case stderrors.Is(err, caseflow.ErrInvalidGraph), stderrors.Is(err, caseflow.ErrEmptyGraph):
		base = errInvalidGraph
	case stderrors.Is(err, caseflow.ErrInvalidCaseID):
		base = errInvalidCaseID
	case stderrors.Is(err, caseflow.ErrCaseNotFound):
		base = errCaseNotFound
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		base = errCancelled
	default:
		base = errInternal
	}
	out := base.Clone()
	out.Message = err.Error()
	out.Source = err
	return out
}

func writeError(c fiber.Ctx, err error) error {
	ae := classify(err)
	status, ok := statusByCode[ae.TextCode]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{"error": ae.Message, "code": ae.TextCode})
}
