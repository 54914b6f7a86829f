package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Ensure Investigator implements the interface.
var _ driven.Investigator = (*Investigator)(nil)

const researchMaxTokens = 4096

// Options configures an Investigator.
type Options struct {
	// RequestsPerMinute paces model calls. Zero disables pacing.
	RequestsPerMinute int

	// Clock stamps evidence records. Defaults to time.Now.
	Clock func() time.Time
}

// Investigator researches each task with a language model.
type Investigator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	limiter *rate.Limiter
	clock   func() time.Time
}

// NewInvestigator creates a model-backed investigator.
func NewInvestigator(llm driven.LLMService, prompts driven.PromptStore, opts Options) *Investigator {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Investigator{
		llm:     llm,
		prompts: prompts,
		limiter: newLimiter(opts.RequestsPerMinute),
		clock:   clock,
	}
}

// newLimiter allows one call per interval with no burst. It returns nil when
// pacing is disabled.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// IndividualSanctions screens a person against sanctions lists.
func (i *Investigator) IndividualSanctions(ctx context.Context, q driven.PersonQuery) (*domain.SanctionsResult, error) {
	text, err := i.ask(ctx, driven.PromptSanctions, describePerson(q))
	if err != nil {
		return nil, err
	}
	return parseSanctions(text, i.recorder(domain.TaskIndividualSanctions, q.FullName), "san_ind"), nil
}

// PEPDetection classifies a person's political exposure.
func (i *Investigator) PEPDetection(ctx context.Context, q driven.PEPQuery) (*domain.PEPClassification, error) {
	text, err := i.ask(ctx, driven.PromptPEP, describePEP(q))
	if err != nil {
		return nil, err
	}
	return parsePEP(text, i.recorder(domain.TaskPEPDetection, q.FullName), q.SelfDeclared), nil
}

// IndividualAdverseMedia searches news coverage about a person.
func (i *Investigator) IndividualAdverseMedia(ctx context.Context, q driven.PersonQuery) (*domain.AdverseMediaResult, error) {
	text, err := i.ask(ctx, driven.PromptAdverseMedia, describePerson(q))
	if err != nil {
		return nil, err
	}
	return parseMedia(text, i.recorder(domain.TaskIndividualAdverseMedia, q.FullName), "adv_ind", "Adverse media"), nil
}

// EntityVerification checks a business against corporate registries.
func (i *Investigator) EntityVerification(ctx context.Context, q driven.EntityQuery) (*domain.EntityVerification, error) {
	text, err := i.ask(ctx, driven.PromptEntityVerification, describeEntity(q))
	if err != nil {
		return nil, err
	}
	return parseEntity(text, i.recorder(domain.TaskEntityVerification, q.LegalName)), nil
}

// EntitySanctions screens a business and its owners against sanctions lists.
func (i *Investigator) EntitySanctions(ctx context.Context, q driven.EntityQuery) (*domain.SanctionsResult, error) {
	text, err := i.ask(ctx, driven.PromptSanctions, describeEntity(q))
	if err != nil {
		return nil, err
	}
	return parseSanctions(text, i.recorder(domain.TaskEntitySanctions, q.LegalName), "san_ent"), nil
}

// BusinessAdverseMedia searches news coverage about a business.
func (i *Investigator) BusinessAdverseMedia(ctx context.Context, q driven.EntityQuery) (*domain.AdverseMediaResult, error) {
	text, err := i.ask(ctx, driven.PromptAdverseMedia, describeEntity(q))
	if err != nil {
		return nil, err
	}
	return parseMedia(text, i.recorder(domain.TaskBusinessAdverseMedia, q.LegalName), "adv_biz", "Business adverse media"), nil
}

// JurisdictionRisk assesses the listed countries. An unreadable response is
// replaced by an assessment from the built-in FATF and OFAC lists.
func (i *Investigator) JurisdictionRisk(ctx context.Context, jurisdictions []string) (*domain.JurisdictionRiskResult, error) {
	text, err := i.ask(ctx, driven.PromptJurisdiction, describeJurisdictions(jurisdictions))
	if err != nil {
		return nil, err
	}
	if out, ok := parseJurisdiction(text, jurisdictions, i.clock()); ok {
		return out, nil
	}
	logger.Warn("Jurisdiction response unreadable, assessing from reference lists")
	return AssessJurisdictions(jurisdictions, i.clock()), nil
}

func (i *Investigator) recorder(task domain.TaskName, subject string) recorder {
	return recorder{task: task, subject: subject, now: i.clock()}
}

// fill substitutes the first %s placeholder, appending the subject when the
// template has none.
func fill(template, subject string) string {
	if strings.Contains(template, "%s") {
		return strings.Replace(template, "%s", subject, 1)
	}
	return template + "\n\n" + subject
}

// ask renders a template, waits for the pacing limiter and calls the model.
func (i *Investigator) ask(ctx context.Context, promptName, subject string) (string, error) {
	if i.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	template, err := i.prompts.Load(promptName)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", promptName, err)
	}
	prompt := fill(template, subject)

	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	req := driven.UserPrompt("", prompt, researchMaxTokens)
	req.JSON = true
	text, err := complete(ctx, i.llm, promptName+" research", req)
	if err != nil {
		return "", fmt.Errorf("%s research: %w", promptName, err)
	}
	return text, nil
}

// complete runs one model call and warns when the reply hit the token cap.
func complete(ctx context.Context, llm driven.LLMService, label string, req driven.Completion) (string, error) {
	res, err := llm.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Debug("%s via %s: %d tokens in, %d out", label, llm.ModelName(), res.InputTokens, res.OutputTokens)
	if res.Truncated {
		logger.Warn("%s stopped at the %d token limit; the reply may be incomplete", label, req.MaxTokens)
	}
	return res.Text, nil
}
