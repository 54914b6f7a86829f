package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure the model-backed services implement their ports.
var (
	_ driven.SynthesisService = (*Synthesizer)(nil)
	_ driven.ReviewAssistant  = (*Assistant)(nil)
)

const (
	synthesisMaxTokens = 8192
	assistantMaxTokens = 2048

	assistantTemperature = 0.2
)

// Synthesizer runs the cross-referencing pass with a language model.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSynthesizer creates a model-backed synthesis service.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore) *Synthesizer {
	return &Synthesizer{llm: llm, prompts: prompts}
}

// Synthesize sends the case as JSON and decodes the recommended decision.
// A response without a recognised decision is an error so the pipeline
// escalates.
func (s *Synthesizer) Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.SynthesisOutput, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	system, err := s.prompts.Load(driven.PromptSynthesis)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptSynthesis, err)
	}
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	logger.Debug("Synthesis over %d evidence records", len(req.Evidence))
	call := driven.UserPrompt(system, "Case file:\n```json\n"+string(payload)+"\n```", synthesisMaxTokens)
	call.JSON = true
	text, err := complete(ctx, s.llm, "synthesis", call)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	var out domain.SynthesisOutput
	if !decode(text, &out) {
		return nil, fmt.Errorf("%w: response had no JSON object", domain.ErrEmptySynthesis)
	}
	out.RecommendedDecision = domain.Decision(strings.ToUpper(strings.TrimSpace(string(out.RecommendedDecision))))
	if !out.IsUsable() {
		return nil, fmt.Errorf("%w: decision %q", domain.ErrEmptySynthesis, out.RecommendedDecision)
	}
	return &out, nil
}

// Assistant answers officer questions during review.
type Assistant struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAssistant creates a model-backed review assistant.
func NewAssistant(llm driven.LLMService, prompts driven.PromptStore) *Assistant {
	return &Assistant{llm: llm, prompts: prompts}
}

// Answer responds to a question about the rendered case.
func (a *Assistant) Answer(ctx context.Context, caseContext, question string) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	template, err := a.prompts.Load(driven.PromptReviewAssistant)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptReviewAssistant, err)
	}

	call := driven.UserPrompt(fill(template, caseContext), question, assistantMaxTokens)
	call.Temperature = assistantTemperature
	answer, err := complete(ctx, a.llm, "review assistant", call)
	if err != nil {
		return "", fmt.Errorf("review assistant: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
