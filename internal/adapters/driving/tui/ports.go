// Package tui provides the interactive review console for paused cases.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Review opens paused cases and records officer actions.
	Review driving.ReviewService

	// Pipeline finalizes reviewed cases.
	Pipeline driving.PipelineService

	// Intelligence provides cross-case batch patterns.
	Intelligence driving.ReviewIntelligenceService

	// Settings manages application settings.
	Settings driving.SettingsService

	// Actions copies summaries and opens case folders.
	Actions driving.CaseActionService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(review driving.ReviewService, pipeline driving.PipelineService) *Ports {
	return &Ports{
		Review:   review,
		Pipeline: pipeline,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Review == nil {
		return ErrMissingReviewService
	}
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	return nil
}
