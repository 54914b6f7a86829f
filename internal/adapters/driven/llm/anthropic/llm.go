// Package anthropic adapts the Anthropic Messages API to driven.LLMService.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	apiVersion = "2023-06-01"
	provider   = "anthropic"

	// jsonPrefill starts the assistant turn so the reply is a bare object.
	jsonPrefill = "{"
)

// Config holds connection settings. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /v1/messages.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewLLMService creates the adapter.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LLMService{
		http: llmhttp.New(provider, cfg.Timeout, map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": apiVersion,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}, nil
}

// Complete sends one Messages request. JSON requests prefill the assistant
// turn with an opening brace, which is restored on the returned text.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.CompletionResult, error) {
	req := messagesRequest{
		Model:       s.model,
		System:      c.System,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	for _, m := range c.Messages {
		req.Messages = append(req.Messages, message{Role: m.Role, Content: m.Content})
	}
	if c.JSON {
		req.Messages = append(req.Messages, message{Role: driven.RoleAssistant, Content: jsonPrefill})
	}

	var resp messagesResponse
	if err := s.http.PostJSON(ctx, s.baseURL+"/v1/messages", req, &resp); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("anthropic: reply had no text content")
	}

	out := text.String()
	if c.JSON && !strings.HasPrefix(strings.TrimSpace(out), jsonPrefill) {
		out = jsonPrefill + out
	}
	return &driven.CompletionResult{
		Text:         out,
		Truncated:    resp.StopReason == "max_tokens",
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.http.Get(ctx, s.baseURL+"/v1/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
