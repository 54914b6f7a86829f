package driving

import "context"

// CaseActionService provides desktop conveniences on a stored case.
// This is used by the TUI and CLI adapters.
type CaseActionService interface {
	// CopySummary copies the case summary markdown to the system clipboard.
	CopySummary(ctx context.Context, clientID string) error

	// OpenCase opens the case directory in the platform file browser.
	OpenCase(ctx context.Context, clientID string) error
}
