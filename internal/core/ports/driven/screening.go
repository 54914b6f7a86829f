package driven

import "context"

// ScreeningList searches a consolidated sanctions / denied-party list.
type ScreeningList interface {
	// Search returns entries whose names resemble the query, best first.
	Search(ctx context.Context, name string, opts ScreeningOptions) ([]ScreeningHit, error)

	// Sources returns the list names covered.
	Sources() []string
}

// ScreeningOptions narrows a list search.
type ScreeningOptions struct {
	// EntityType restricts to "Individual" or "Entity". Empty matches both.
	EntityType string

	// Threshold is the minimum similarity returned.
	Threshold float64

	// Limit caps the number of hits. Zero means no cap.
	Limit int
}

// ScreeningHit is one list entry resembling the query.
type ScreeningHit struct {
	Name        string
	MatchedName string
	Source      string
	EntityType  string
	Programs    []string
	Countries   []string
	Remarks     string
	Score       float64
}

// ScreeningRefresher reloads a cached screening list.
type ScreeningRefresher interface {
	// Refresh drops cached data and reloads; it returns the entries loaded.
	Refresh(ctx context.Context) (int, error)
}
