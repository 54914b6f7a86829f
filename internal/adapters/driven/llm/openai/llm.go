// Package openai adapts the OpenAI chat completions API, and compatible
// endpoints, to driven.LLMService.
package openai

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
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	provider = "openai"
)

// Config holds connection settings. APIKey is required; BaseURL may point
// at Azure OpenAI or another compatible server.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /chat/completions.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewLLMService creates the adapter.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		http:    llmhttp.New(provider, cfg.Timeout, map[string]string{"Authorization": "Bearer " + cfg.APIKey}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}, nil
}

// Complete sends one chat completion. JSON requests use JSON mode.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.CompletionResult, error) {
	req := completionRequest{
		Model:       s.model,
		Messages:    toMessages(c),
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
	if c.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp completionResponse
	if err := s.http.PostJSON(ctx, s.baseURL+"/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: reply had no choices")
	}
	choice := resp.Choices[0]
	return &driven.CompletionResult{
		Text:         choice.Message.Content,
		Truncated:    choice.FinishReason == "length",
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// toMessages puts the system prompt first, as chat completions expects.
func toMessages(c driven.Completion) []chatMessage {
	out := make([]chatMessage, 0, len(c.Messages)+1)
	if c.System != "" {
		out = append(out, chatMessage{Role: "system", Content: c.System})
	}
	for _, m := range c.Messages {
		out = append(out, chatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.http.Get(ctx, s.baseURL+"/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
