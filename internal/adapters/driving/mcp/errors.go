// Package mcp provides an MCP (Model Context Protocol) server adapter for kyc.
// It lets AI assistants score and plan prospective clients and read paused cases.
package mcp

import "errors"

var (
	// ErrMissingScorer is returned when the risk scorer is not provided.
	ErrMissingScorer = errors.New("mcp: risk scorer is required")

	// ErrMissingPlanner is returned when the planner is not provided.
	ErrMissingPlanner = errors.New("mcp: planner is required")

	// ErrReviewUnavailable is returned by case tools when no review service is configured.
	ErrReviewUnavailable = errors.New("mcp: review service not configured")
)
