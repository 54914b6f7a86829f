package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk, falling
// back to the built-in defaults.
//
// Files are only created on the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

const evidenceRules = `## Evidence classification
Every finding is an evidence record with:
- evidence_id: short unique id
- claim: one sentence
- evidence_class: V (verified: URL and quote from an official source), S (sourced: URL and excerpt from news or filings), I (inferred: explain the reasoning), U (unknown: searched, nothing found)
- disposition: CLEAR | POTENTIAL_MATCH | CONFIRMED_MATCH | FALSE_POSITIVE | PENDING_REVIEW
- confidence: HIGH | MEDIUM | LOW
- supporting_data: array of objects with url and excerpt where available

## False positives
Compare full name, date of birth and citizenship before calling a match. Name similarity above 0.95 is POTENTIAL_MATCH, 0.70 to 0.95 needs secondary identifiers, below 0.70 is likely CLEAR. When unsure use PENDING_REVIEW.

## Regulatory context
FINTRAC (PCMLTFA), CIRO KYC Rule 3202, OFAC when there is a US nexus, FATCA on US indicia, CRS for foreign tax residency.

Return the result as a single JSON object inside a ` + "```json" + ` code block.`

// defaultPrompts are written to disk on first use and served when a file is missing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSanctions: `You are a KYC sanctions screening specialist. Screen the subject below against the Consolidated Screening List, OpenSanctions, Canadian SEMA sanctions and the UN Security Council list.

%s

JSON fields:
- entity_screened
- screening_sources: lists checked
- matches: array of {list_name, matched_name, score, details}
- disposition: CLEAR | POTENTIAL_MATCH | CONFIRMED_MATCH | FALSE_POSITIVE | PENDING_REVIEW
- disposition_reasoning
- ofac_50_percent_rule_applicable: boolean, entities only
- evidence_records

` + evidenceRules,

	driven.PromptPEP: `You are a KYC politically exposed persons specialist. Determine whether the subject below holds or held a prominent public function, or is a family member or close associate of someone who did.

%s

JSON fields:
- entity_screened
- self_declared: boolean
- detected_level: NOT_PEP | FOREIGN_PEP | DOMESTIC_PEP | HIO | PEP_FAMILY | PEP_ASSOCIATE
- positions_found: array of {position, organization, dates, source}
- family_associations: array of {name, relationship, pep_details}
- edd_required: boolean
- evidence_records

` + evidenceRules,

	driven.PromptAdverseMedia: `You are a KYC adverse media analyst. Search for negative news about the subject below: fraud, money laundering, corruption, sanctions evasion, terrorism financing, regulatory action or litigation.

%s

JSON fields:
- entity_screened
- overall_level: CLEAR | LOW_CONCERN | MATERIAL_CONCERN | HIGH_RISK
- articles_found: array of {title, source, date, summary, category, source_tier, url}; source_tier is TIER_0 (government or court), TIER_1 (major media) or TIER_2 (other)
- categories: array of category strings
- evidence_records

` + evidenceRules,

	driven.PromptEntityVerification: `You are a corporate registry analyst. Verify the registration and ownership of the entity below using federal and provincial registries.

%s

JSON fields:
- entity_name
- verified_registration: boolean
- registry_sources
- registration_details: {jurisdiction, status, date, registry_number}
- ubo_structure_verified: boolean
- discrepancies: array of strings
- evidence_records

` + evidenceRules,

	driven.PromptJurisdiction: `You are a country risk analyst. Assess the money laundering and sanctions risk of the jurisdictions below.

%s

JSON fields:
- jurisdictions_assessed
- fatf_grey_list, fatf_black_list: countries on each list
- sanctions_programs: array of {country, program, administering_body}
- fintrac_directives: array of strings
- overall_jurisdiction_risk: LOW | MEDIUM | HIGH | CRITICAL
- jurisdiction_details: array of {country, fatf_status, cpi_score, basel_aml_score}; fatf_status is clean, grey_list or black_list
- evidence_records

` + evidenceRules,

	driven.PromptSynthesis: `You are a senior KYC analyst. You receive a client profile, the investigation plan, every research result, the evidence store and a revised risk assessment. Cross-reference the findings, then recommend a decision.

Rules:
- A CONFIRMED_MATCH sanctions disposition always means DECLINE.
- Name contradictions between findings and say how they resolve.
- Only add risk_elevations for risks not already in the revised assessment; give each a points value.
- Each decision point needs a counter_argument stating the risk if the disposition is wrong.

Return one JSON object in a ` + "```json" + ` code block with:
- key_findings: array of strings
- contradictions: array of {finding_1, finding_2, agent_a, agent_b, resolution}
- risk_elevations: array of {factor, points, evidence_id, reasoning}
- recommended_decision: APPROVE | CONDITIONAL | ESCALATE | DECLINE
- decision_reasoning
- conditions: array of strings
- items_requiring_review: array of strings
- senior_management_approval_needed: boolean
- evidence_graph: {corroborations, unresolved_items}
- decision_points: array of {decision_id, title, context_summary, disposition, confidence, counter_argument: {evidence_id, disposition_challenged, argument, risk_if_wrong}}`,

	driven.PromptReviewAssistant: `You are assisting a compliance officer reviewing a KYC case. Answer questions using only the case material below. Cite evidence ids where you rely on them and say plainly when the case does not contain the answer.

%s`,
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.kyc/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	defaultPrompt, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return defaultPrompt, nil
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		return defaultPrompt, nil
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// PromptNames lists the built-in prompt names, sorted.
func PromptNames() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// initialise creates the prompt directory and any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# KYC research prompts\n\n")
	b.WriteString("Each file is the template for one research or synthesis call.\n")
	b.WriteString("Edits take effect on the next run.\n\n")
	for _, name := range PromptNames() {
		fmt.Fprintf(&b, "- `%s.txt`\n", name)
	}
	b.WriteString("\nResearch templates take one `%s` placeholder, replaced by the subject\n")
	b.WriteString("description. Keep it when editing. The synthesis prompt has none.\n")
	b.WriteString("Responses must keep the JSON field names listed in each template.\n")
	return os.WriteFile(path, []byte(b.String()), 0600)
}
