package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure CaseActionService implements the interface.
var _ driving.CaseActionService = (*CaseActionService)(nil)

// CaseActionService provides actions on stored cases.
type CaseActionService struct {
	store  driven.CaseStore
	config domain.PipelineConfig

	// copyText and open are replaced in tests.
	copyText func(string) error
	open     func(string) error
}

// NewCaseActionService creates a new case action service.
func NewCaseActionService(store driven.CaseStore, config domain.PipelineConfig) *CaseActionService {
	return &CaseActionService{
		store:    store,
		config:   config,
		copyText: clipboard.WriteAll,
		open:     openPath,
	}
}

// CopySummary renders the case summary from its checkpoint and copies it.
func (s *CaseActionService) CopySummary(ctx context.Context, clientID string) error {
	cp, _, err := s.store.LoadCheckpoint(ctx, clientID)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	var session *domain.ReviewSession
	var stored domain.ReviewSession
	if err := s.store.LoadArtifact(ctx, clientID, driven.ArtifactReviewSession, &stored); err == nil {
		session = &stored
	}

	summary := RenderSummary(CaseOutputFrom(cp, session, s.config.Clock()))
	if err := s.copyText(summary); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// OpenCase opens the case directory.
func (s *CaseActionService) OpenCase(ctx context.Context, clientID string) error {
	cases, err := s.store.ListCases(ctx)
	if err != nil {
		return err
	}
	for _, id := range cases {
		if id == clientID {
			return s.open(s.store.Location(clientID))
		}
	}
	return fmt.Errorf("%w: case %s", domain.ErrNotFound, clientID)
}

// openPath opens a file or directory in the default application.
func openPath(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", path)
	case osLinux:
		cmd = exec.Command("xdg-open", path)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
