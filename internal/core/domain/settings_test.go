package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_Traits(t *testing.T) {
	tests := []struct {
		provider    AIProvider
		valid       bool
		needsKey    bool
		local       bool
		description string
		keyEnv      string
	}{
		{AIProviderOllama, true, false, true, "Ollama (local)", ""},
		{AIProviderOpenAI, true, true, false, "OpenAI (cloud)", "OPENAI_API_KEY"},
		{AIProviderAnthropic, true, true, false, "Anthropic (cloud)", "ANTHROPIC_API_KEY"},
		{AIProvider(""), false, false, false, unknownDescription, ""},
		{AIProvider("gemini"), false, false, false, unknownDescription, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.description, tt.provider.Description())
			assert.Equal(t, tt.keyEnv, tt.provider.APIKeyEnv())
			assert.Equal(t, string(tt.provider), tt.provider.String())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured(), "local model needs no key")
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderOpenAI}.IsConfigured(), "cloud model without key")
	assert.False(t, LLMSettings{Provider: "bard", APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	assert.False(t, settings.LLM.IsConfigured(), "research screens offline until a model is chosen")
	assert.Equal(t, PipelineSettings{
		OutputDir:         "results",
		MatchThreshold:    0.85,
		BatchWindowDays:   7,
		RequestsPerMinute: 30,
	}, settings.Pipeline)
	require.NoError(t, settings.Pipeline.Validate())
}

func TestPipelineSettings_Validate(t *testing.T) {
	base := DefaultAppSettings().Pipeline

	tests := map[string]func(p *PipelineSettings){
		"zero batch window":      func(p *PipelineSettings) { p.BatchWindowDays = 0 },
		"threshold of zero":      func(p *PipelineSettings) { p.MatchThreshold = 0 },
		"threshold above one":    func(p *PipelineSettings) { p.MatchThreshold = 1.2 },
		"negative pacing":        func(p *PipelineSettings) { p.RequestsPerMinute = -1 },
		"offline without a list": func(p *PipelineSettings) { p.Offline = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}

	t.Run("offline with a list", func(t *testing.T) {
		p := base
		p.Offline = true
		p.ScreeningListPath = "/var/lib/kyc/consolidated.json"
		p.MatchThreshold = 1
		p.RequestsPerMinute = 0
		assert.NoError(t, p.Validate())
	})
}

func TestLLMProvidersHaveDefaultModels(t *testing.T) {
	models := DefaultLLMModels()
	providers := AllLLMProviders()

	require.Len(t, models, len(providers))
	for _, p := range providers {
		assert.True(t, p.IsValid())
		assert.NotEmpty(t, models[p], "no default model for %s", p)
	}
	assert.Equal(t, "claude-3-5-sonnet-latest", models[AIProviderAnthropic])
}

func TestPipelineConfig_Clock(t *testing.T) {
	cfg := DefaultPipelineConfig()
	assert.Equal(t, 7*24*time.Hour, cfg.BatchWindow)

	onboarding := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cfg.Now = func() time.Time { return onboarding }
	assert.Equal(t, onboarding, cfg.Clock())

	assert.WithinDuration(t, time.Now(), PipelineConfig{}.Clock(), time.Minute)
}

func TestAllLLMProviders_ReturnsCopy(t *testing.T) {
	first := AllLLMProviders()
	first[0] = "tampered"

	assert.Equal(t, AIProviderOllama, AllLLMProviders()[0])
}
