package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyOutputDir         = "pipeline.output_dir"
	keyScreeningListPath = "pipeline.screening_list_path"
	keyScreeningListURL  = "pipeline.screening_list_url"
	keyMatchThreshold    = "pipeline.match_threshold"
	keyBatchWindowDays   = "pipeline.batch_window_days"
	keyRequestsPerMinute = "pipeline.requests_per_minute"
	keyOffline           = "pipeline.offline"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. A missing API key falls back
// to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Pipeline: domain.PipelineSettings{
			OutputDir:         s.getString(keyOutputDir, defaults.Pipeline.OutputDir),
			ScreeningListPath: s.configStore.GetString(keyScreeningListPath),
			ScreeningListURL:  s.configStore.GetString(keyScreeningListURL),
			MatchThreshold:    s.getFloat(keyMatchThreshold, defaults.Pipeline.MatchThreshold),
			BatchWindowDays:   s.getInt(keyBatchWindowDays, defaults.Pipeline.BatchWindowDays),
			RequestsPerMinute: s.getInt(keyRequestsPerMinute, defaults.Pipeline.RequestsPerMinute),
			Offline:           s.getBool(keyOffline, defaults.Pipeline.Offline),
		},
	}

	if settings.LLM.APIKey == "" {
		if env := settings.LLM.Provider.APIKeyEnv(); env != "" {
			settings.LLM.APIKey = s.getenv(env)
		}
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	p := settings.Pipeline
	for _, kv := range []struct {
		key   string
		value any
	}{
		{keyOutputDir, p.OutputDir},
		{keyScreeningListPath, p.ScreeningListPath},
		{keyScreeningListURL, p.ScreeningListURL},
		{keyMatchThreshold, p.MatchThreshold},
		{keyBatchWindowDays, p.BatchWindowDays},
		{keyRequestsPerMinute, p.RequestsPerMinute},
		{keyOffline, p.Offline},
	} {
		if err := s.configStore.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("save %s: %w", kv.key, err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.getenv(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Set updates one dotted key, parsing the value for the key's type.
func (s *SettingsService) Set(key, value string) error {
	var parsed any
	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
		parsed = value
	case keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyScreeningListPath, keyScreeningListURL:
		parsed = value
	case keyOutputDir:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidInput, key)
		}
		parsed = value
	case keyBatchWindowDays, keyRequestsPerMinute:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == keyBatchWindowDays && n == 0) {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case keyMatchThreshold:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1]", domain.ErrInvalidInput, key)
		}
		parsed = f
	case keyOffline:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Set(key, parsed)
}

// SettingKeys lists the keys accepted by Set, in display order.
func SettingKeys() []string {
	return []string{
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyOutputDir, keyScreeningListPath, keyScreeningListURL,
		keyMatchThreshold, keyBatchWindowDays, keyRequestsPerMinute, keyOffline,
	}
}

// Validate checks that current settings can drive a run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	p := settings.Pipeline
	if err := p.Validate(); err != nil {
		return err
	}

	if !p.Offline && settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf(
			"%w: LLM provider %q is not fully configured (set llm.api_key or %s)",
			domain.ErrInvalidInput, settings.LLM.Provider.Description(), settings.LLM.Provider.APIKeyEnv(),
		)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the orchestrator configuration derived from settings.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	if days := s.getInt(keyBatchWindowDays, domain.DefaultBatchWindowDays); days > 0 {
		cfg.BatchWindow = time.Duration(days) * 24 * time.Hour
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
