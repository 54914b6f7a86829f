package domain

import (
	"fmt"
	"slices"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Supported providers. Ollama runs locally; the others are keyed cloud APIs.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

type providerTraits struct {
	description  string
	keyEnv       string
	defaultModel string
}

// providerOrder is the order providers are offered in.
var providerOrder = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

var providers = map[AIProvider]providerTraits{
	AIProviderOllama:    {description: "Ollama (local)", defaultModel: "llama3.2"},
	AIProviderOpenAI:    {description: "OpenAI (cloud)", keyEnv: "OPENAI_API_KEY", defaultModel: "gpt-4o-mini"},
	AIProviderAnthropic: {description: "Anthropic (cloud)", keyEnv: "ANTHROPIC_API_KEY", defaultModel: "claude-3-5-sonnet-latest"},
}

// IsValid reports whether p is a supported provider.
func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey reports whether p is a cloud API.
func (p AIProvider) RequiresAPIKey() bool {
	return providers[p].keyEnv != ""
}

// IsLocal reports whether p runs on this machine.
func (p AIProvider) IsLocal() bool {
	return p.IsValid() && !p.RequiresAPIKey()
}

func (p AIProvider) String() string {
	return string(p)
}

// Description returns the name shown in settings.
func (p AIProvider) Description() string {
	if t, ok := providers[p]; ok {
		return t.description
	}
	return unknownDescription
}

// APIKeyEnv returns the environment variable consulted when no key is
// configured, or "" for local providers.
func (p AIProvider) APIKeyEnv() string {
	return providers[p].keyEnv
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineSettings holds user-editable pipeline configuration.
type PipelineSettings struct {
	// OutputDir is where per-client case directories are written.
	OutputDir string

	// ScreeningListPath is a local Consolidated Screening List JSON file.
	ScreeningListPath string

	// ScreeningListURL optionally refreshes the list from a remote endpoint.
	ScreeningListURL string

	// MatchThreshold is the minimum name similarity reported as a hit.
	MatchThreshold float64

	// BatchWindowDays is the rolling window for cross-case patterns.
	BatchWindowDays int

	// RequestsPerMinute paces calls to research collaborators. Zero disables pacing.
	RequestsPerMinute int

	// Offline forces screening against the local list instead of an LLM.
	Offline bool
}

// Validate checks the values a run depends on.
func (p PipelineSettings) Validate() error {
	if p.BatchWindowDays <= 0 {
		return fmt.Errorf("%w: batch window must be at least one day", ErrInvalidInput)
	}
	if p.MatchThreshold <= 0 || p.MatchThreshold > 1 {
		return fmt.Errorf("%w: match threshold %.2f out of range", ErrInvalidInput, p.MatchThreshold)
	}
	if p.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests per minute cannot be negative", ErrInvalidInput)
	}
	if p.Offline && p.ScreeningListPath == "" && p.ScreeningListURL == "" {
		return fmt.Errorf("%w: offline mode needs pipeline.screening_list_path or pipeline.screening_list_url", ErrInvalidInput)
	}
	return nil
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Pipeline holds pipeline settings.
	Pipeline PipelineSettings
}

// Pipeline defaults.
const (
	DefaultOutputDir         = "results"
	DefaultBatchWindowDays   = 7
	DefaultMatchThreshold    = 0.85
	DefaultRequestsPerMinute = 30
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; research falls back to offline screening.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		Pipeline: PipelineSettings{
			OutputDir:         DefaultOutputDir,
			MatchThreshold:    DefaultMatchThreshold,
			BatchWindowDays:   DefaultBatchWindowDays,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
	}
}

// AllLLMProviders returns the supported providers in display order.
func AllLLMProviders() []AIProvider {
	return slices.Clone(providerOrder)
}

// DefaultLLMModels returns the model used when none is configured.
func DefaultLLMModels() map[AIProvider]string {
	models := make(map[AIProvider]string, len(providers))
	for p, t := range providers {
		models[p] = t.defaultModel
	}
	return models
}

// PipelineConfig is the explicit configuration handed to the orchestrator at
// construction. Nothing in the pipeline reads process-wide state.
type PipelineConfig struct {
	// BatchWindow is the rolling window for cross-case patterns.
	BatchWindow time.Duration

	// Now supplies the clock. Defaults to time.Now.
	Now func() time.Time
}

// DefaultPipelineConfig returns the default orchestrator configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BatchWindow: DefaultBatchWindowDays * 24 * time.Hour,
		Now:         time.Now,
	}
}

// Clock returns the configured clock, falling back to time.Now.
func (c PipelineConfig) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
