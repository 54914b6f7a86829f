package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

type stubValidator struct {
	err  error
	seen *domain.LLMSettings
}

func (v *stubValidator) ValidateLLM(config *domain.LLMSettings) error {
	v.seen = config
	return v.err
}

func newSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettings(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newSettings(nil)
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.model", "gpt-4o")
	_ = store.Set("llm.api_key", "sk-test")
	_ = store.Set("pipeline.output_dir", "/srv/cases")
	_ = store.Set("pipeline.match_threshold", 0.9)
	_ = store.Set("pipeline.batch_window_days", 30)
	_ = store.Set("pipeline.requests_per_minute", 0)
	_ = store.Set("pipeline.offline", true)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.Equal(t, "/srv/cases", settings.Pipeline.OutputDir)
	assert.InDelta(t, 0.9, settings.Pipeline.MatchThreshold, 1e-9)
	assert.Equal(t, 30, settings.Pipeline.BatchWindowDays)
	assert.Equal(t, 0, settings.Pipeline.RequestsPerMinute, "explicit zero disables pacing")
	assert.True(t, settings.Pipeline.Offline)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	service, store := newSettings(nil)
	_ = store.Set("llm.provider", "mystery")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Empty(t, settings.LLM.Provider)
}

func TestSettingsService_Get_APIKeyFromEnvironment(t *testing.T) {
	service, store := newSettings(map[string]string{"ANTHROPIC_API_KEY": "sk-ant-env"})
	_ = store.Set("llm.provider", "anthropic")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "sk-ant-env", settings.LLM.APIKey)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.LLM.Model)

	_ = store.Set("llm.api_key", "sk-ant-file")
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-file", settings.LLM.APIKey)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service, _ := newSettings(nil)
	want := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			Model:    "llama3.2",
			BaseURL:  "http://gpu-box:11434",
		},
		Pipeline: domain.PipelineSettings{
			OutputDir:         "out",
			ScreeningListPath: "/data/csl.json",
			MatchThreshold:    0.8,
			BatchWindowDays:   10,
			RequestsPerMinute: 12,
			Offline:           true,
		},
	}

	require.NoError(t, service.Save(want))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	t.Run("local provider gets default URL and model", func(t *testing.T) {
		service, _ := newSettings(nil)
		require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
		assert.Equal(t, "llama3.2", settings.LLM.Model)
		assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	})

	t.Run("cloud provider clears base URL", func(t *testing.T) {
		service, store := newSettings(nil)
		_ = store.Set("llm.base_url", "http://old")
		require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "claude-x", "sk-ant"))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "claude-x", settings.LLM.Model)
		assert.Empty(t, settings.LLM.BaseURL)
		assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	})

	t.Run("cloud provider without key", func(t *testing.T) {
		service, _ := newSettings(nil)
		err := service.SetLLMProvider(domain.AIProviderOpenAI, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cloud provider with key in environment", func(t *testing.T) {
		service, _ := newSettings(map[string]string{"OPENAI_API_KEY": "sk-env"})
		assert.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""))
	})

	t.Run("unknown provider", func(t *testing.T) {
		service, _ := newSettings(nil)
		assert.ErrorIs(t, service.SetLLMProvider("mystery", "", ""), domain.ErrInvalidInput)
	})
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"llm.provider", "ollama", "ollama", false},
		{"llm.provider", "mystery", nil, true},
		{"llm.model", "gpt-4o", "gpt-4o", false},
		{"pipeline.output_dir", "/tmp/out", "/tmp/out", false},
		{"pipeline.output_dir", " ", nil, true},
		{"pipeline.batch_window_days", "14", 14, false},
		{"pipeline.batch_window_days", "0", nil, true},
		{"pipeline.requests_per_minute", "0", 0, false},
		{"pipeline.requests_per_minute", "-1", nil, true},
		{"pipeline.match_threshold", "0.9", 0.9, false},
		{"pipeline.match_threshold", "1.5", nil, true},
		{"pipeline.offline", "true", true, false},
		{"pipeline.offline", "sometimes", nil, true},
		{"search.mode", "hybrid", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			service, store := newSettings(nil)
			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				_, exists := store.Get(tt.key)
				assert.False(t, exists)
				return
			}
			require.NoError(t, err)
			got, _ := store.Get(tt.key)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingKeys_AllAccepted(t *testing.T) {
	values := map[string]string{
		"llm.provider":                 "ollama",
		"pipeline.match_threshold":     "0.9",
		"pipeline.batch_window_days":   "7",
		"pipeline.requests_per_minute": "10",
		"pipeline.offline":             "false",
	}
	for _, key := range SettingKeys() {
		service, _ := newSettings(nil)
		value, ok := values[key]
		if !ok {
			value = "x"
		}
		assert.NoError(t, service.Set(key, value), key)
	}
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		service, _ := newSettings(nil)
		assert.NoError(t, service.Validate())
	})

	t.Run("cloud provider without key", func(t *testing.T) {
		service, store := newSettings(nil)
		_ = store.Set("llm.provider", "anthropic")
		err := service.Validate()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("offline ignores the LLM", func(t *testing.T) {
		service, store := newSettings(nil)
		_ = store.Set("llm.provider", "anthropic")
		_ = store.Set("pipeline.offline", true)
		_ = store.Set("pipeline.screening_list_path", "/data/csl.json")
		assert.NoError(t, service.Validate())
	})

	t.Run("offline needs a screening list", func(t *testing.T) {
		service, store := newSettings(nil)
		_ = store.Set("pipeline.offline", true)
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		service, store := newSettings(nil)
		_ = store.Set("pipeline.match_threshold", 2.0)
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	service, store := newSettings(nil)
	assert.NoError(t, service.ValidateLLMConfig(), "no validator configured")

	validator := &stubValidator{err: errors.New("connection refused")}
	service.aiValidator = validator
	_ = store.Set("llm.provider", "ollama")

	err := service.ValidateLLMConfig()

	assert.EqualError(t, err, "connection refused")
	require.NotNil(t, validator.seen)
	assert.Equal(t, domain.AIProviderOllama, validator.seen.Provider)
}

func TestSettingsService_GetPipelineConfig(t *testing.T) {
	service, store := newSettings(nil)
	assert.Equal(t, 7*24*time.Hour, service.GetPipelineConfig().BatchWindow)

	_ = store.Set("pipeline.batch_window_days", 3)

	cfg := service.GetPipelineConfig()
	assert.Equal(t, 72*time.Hour, cfg.BatchWindow)
	assert.NotNil(t, cfg.Now)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newSettings(nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
