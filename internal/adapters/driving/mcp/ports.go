package mcp

import (
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Scorer computes preliminary risk.
	Scorer driving.RiskScorer

	// Planner builds investigation plans.
	Planner driving.Planner

	// Review reads paused cases. Optional; case tools and resources fail without it.
	Review driving.ReviewService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Scorer == nil {
		return ErrMissingScorer
	}
	if p.Planner == nil {
		return ErrMissingPlanner
	}
	return nil
}
