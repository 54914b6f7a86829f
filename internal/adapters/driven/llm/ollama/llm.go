// Package ollama adapts a local Ollama server to driven.LLMService.
package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second

	provider = "ollama"
)

// Config holds connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat with streaming off.
type LLMService struct {
	http    *llmhttp.Client
	baseURL string
	model   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  options       `json:"options"`
}

type chatResponse struct {
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// NewLLMService creates the adapter.
func NewLLMService(cfg Config) *LLMService {
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
		http:    llmhttp.New(provider, cfg.Timeout, nil),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Complete sends one chat request. JSON requests set format to json.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.CompletionResult, error) {
	req := chatRequest{
		Model:   s.model,
		Options: options{NumPredict: c.MaxTokens, Temperature: c.Temperature},
	}
	if c.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: c.System})
	}
	for _, m := range c.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	if c.JSON {
		req.Format = "json"
	}

	var resp chatResponse
	if err := s.http.PostJSON(ctx, s.baseURL+"/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &driven.CompletionResult{
		Text:         resp.Message.Content,
		Truncated:    resp.DoneReason == "length",
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
	}, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.http.Get(ctx, s.baseURL+"/api/tags")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
