package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestComplete_JSONMode(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"disposition\":\"CLEAR\"}"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":80,"completion_tokens":9}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o"})
	require.NoError(t, err)

	req := driven.UserPrompt("You screen sanctions lists.", "screen Jane Doe", 4096)
	req.JSON = true
	out, err := svc.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, `{"disposition":"CLEAR"}`, out.Text)
	assert.False(t, out.Truncated)
	assert.Equal(t, 80, out.InputTokens)
	assert.Equal(t, 9, out.OutputTokens)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 4096, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "screen Jane Doe", got.Messages[1].Content)
}

func TestComplete_PlainTextAndTruncation(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"The client"},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	out, err := svc.Complete(context.Background(), driven.UserPrompt("", "summarise", 3))

	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Nil(t, got.ResponseFormat)
	require.Len(t, got.Messages, 1)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, domain.ErrRateLimited},
		{"forbidden", http.StatusForbidden, `{}`, domain.ErrLLMUnavailable},
		{"no choices", http.StatusOK, `{"choices":[]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Complete(context.Background(), driven.UserPrompt("", "p", 0))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(context.Background()))
}
