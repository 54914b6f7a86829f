// Package ai builds LLM service adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/kyc-onboard/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/kyc-onboard/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/kyc-onboard/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

const (
	pingTimeout = 5 * time.Second
	fixHint     = "Run 'kyc settings show' to check the llm.* keys"
)

type constructor func(*domain.LLMSettings) (driven.LLMService, error)

var providers = map[domain.AIProvider]constructor{
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.Config{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return asService(openaillm.NewLLMService(openaillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model}))
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return asService(anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model}))
	},
}

// CreateLLMService builds the adapter for the configured provider without
// contacting it. Unconfigured settings yield nil and no error.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := providers[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	return build(settings)
}

// Connect builds the adapter and pings it. A service that cannot be reached
// is closed and reported as domain.ErrLLMUnavailable. Unconfigured settings
// yield nil and no error.
func Connect(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// asService keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func asService[T driven.LLMService](svc T, err error) (driven.LLMService, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}
