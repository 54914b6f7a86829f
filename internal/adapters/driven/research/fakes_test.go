package research

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// mockLLM replays a canned response and records what it was asked.
type mockLLM struct {
	response  string
	err       error
	truncated bool
	requests  []driven.Completion
	prompts   []string
}

func (m *mockLLM) Complete(_ context.Context, req driven.Completion) (*driven.CompletionResult, error) {
	m.requests = append(m.requests, req)
	for _, msg := range req.Messages {
		m.prompts = append(m.prompts, msg.Content)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &driven.CompletionResult{Text: m.response, Truncated: m.truncated}, nil
}

func (m *mockLLM) ModelName() string          { return "mock" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockPrompts serves fixed templates.
type mockPrompts map[string]string

func (m mockPrompts) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}

func (m mockPrompts) Reload() {}

func defaultMockPrompts() mockPrompts {
	return mockPrompts{
		driven.PromptSanctions:          "SANCTIONS\n%s",
		driven.PromptPEP:                "PEP\n%s",
		driven.PromptAdverseMedia:       "MEDIA\n%s",
		driven.PromptEntityVerification: "REGISTRY\n%s",
		driven.PromptJurisdiction:       "JURISDICTION\n%s",
		driven.PromptSynthesis:          "SYNTHESIS",
		driven.PromptReviewAssistant:    "ASSIST\n%s",
	}
}

// mockList returns canned hits per name.
type mockList struct {
	hits    map[string][]driven.ScreeningHit
	err     error
	queries []driven.ScreeningOptions
}

func (m *mockList) Search(_ context.Context, name string, opts driven.ScreeningOptions) ([]driven.ScreeningHit, error) {
	m.queries = append(m.queries, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits[name], nil
}

func (m *mockList) Sources() []string { return []string{"Trade.gov CSL"} }

func fenced(body string) string {
	return "Here is the result.\n```json\n" + body + "\n```\nDone."
}
