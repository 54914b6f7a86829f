package ai

import (
	"context"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks LLM settings against the live provider after the
// `kyc settings llm` wizard saves them.
type ConfigValidator struct{}

// NewConfigValidator returns a ConfigValidator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM connects with config and closes again. Unconfigured settings
// pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := Connect(context.Background(), config)
	if err != nil || svc == nil {
		return err
	}
	return svc.Close()
}
