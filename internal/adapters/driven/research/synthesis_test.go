package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func synthesisRequest() domain.SynthesisRequest {
	return domain.SynthesisRequest{
		Client: domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe"}),
		Evidence: []domain.EvidenceRecord{{
			EvidenceID: "san_ind_jane_doe_clear", SourceKind: domain.SourceTask,
			SourceName: "IndividualSanctions", Claim: "No sanctions matches found",
			EvidenceClass: domain.EvidenceSourced, Disposition: domain.DispositionClear,
			Confidence: domain.ConfidenceHigh, Timestamp: fixedNow,
		}},
	}
}

func TestSynthesizer_DecodesDecision(t *testing.T) {
	llm := &mockLLM{response: fenced(`{
		"recommended_decision": "conditional",
		"decision_reasoning": "Domestic PEP with clean screening",
		"conditions": ["Annual review"],
		"risk_elevations": [{"factor": "Cash-intensive employer", "points": 5}],
		"evidence_graph": {"unresolved_items": ["Source of wealth"]}
	}`)}
	s := NewSynthesizer(llm, defaultMockPrompts())

	out, err := s.Synthesize(context.Background(), synthesisRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionConditional, out.RecommendedDecision)
	assert.Equal(t, []string{"Annual review"}, out.Conditions)
	assert.Equal(t, 5, out.RiskElevations[0].Points)
	assert.Equal(t, []string{"Source of wealth"}, out.EvidenceGraph.UnresolvedItems)

	require.Len(t, llm.requests, 1)
	call := llm.requests[0]
	assert.Equal(t, "SYNTHESIS", call.System)
	assert.True(t, call.JSON)
	assert.Zero(t, call.Temperature)
	assert.Equal(t, synthesisMaxTokens, call.MaxTokens)
	assert.Contains(t, call.Messages[0].Content, `"san_ind_jane_doe_clear"`)
}

func TestSynthesizer_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewSynthesizer(&mockLLM{response: "I recommend approval."}, defaultMockPrompts()).Synthesize(ctx, synthesisRequest())
	assert.ErrorIs(t, err, domain.ErrEmptySynthesis)

	_, err = NewSynthesizer(&mockLLM{response: fenced(`{"recommended_decision": "MAYBE"}`)}, defaultMockPrompts()).Synthesize(ctx, synthesisRequest())
	assert.ErrorIs(t, err, domain.ErrEmptySynthesis)

	_, err = NewSynthesizer(nil, defaultMockPrompts()).Synthesize(ctx, synthesisRequest())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = NewSynthesizer(&mockLLM{err: domain.ErrRateLimited}, defaultMockPrompts()).Synthesize(ctx, synthesisRequest())
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestAssistant_Answer(t *testing.T) {
	llm := &mockLLM{response: "  The sanctions screen was clear (san_ind_jane_doe_clear).\n"}
	a := NewAssistant(llm, defaultMockPrompts())

	answer, err := a.Answer(context.Background(), "CASE: Jane Doe", "Was she screened?")
	require.NoError(t, err)
	assert.Equal(t, "The sanctions screen was clear (san_ind_jane_doe_clear).", answer)
	call := llm.requests[0]
	assert.Equal(t, "ASSIST\nCASE: Jane Doe", call.System)
	assert.Equal(t, "Was she screened?", call.Messages[0].Content)
	assert.False(t, call.JSON)

	_, err = a.Answer(context.Background(), "CASE", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewAssistant(nil, defaultMockPrompts()).Answer(context.Background(), "CASE", "q")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
