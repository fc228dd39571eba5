package caseflow

import "errors"

var (
	ErrCycleDetected = errors.New("caseflow: cycle detected, graph is not acyclic")
	ErrNodeNotFound  = errors.New("caseflow: node not found")
	ErrCaseNotFound  = errors.New("caseflow: case not found")
	ErrInvalidGraph  = errors.New("caseflow: invalid graph")
	ErrEmptyGraph    = errors.New("caseflow: graph has no nodes")
	ErrInvalidCaseID = errors.New("caseflow: invalid case id")
)
