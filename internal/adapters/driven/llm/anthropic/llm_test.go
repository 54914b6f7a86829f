package anthropic

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

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc, err := NewLLMService(Config{APIKey: "k", BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestComplete_SendsSystemAndHeaders(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Escalated because "},{"type":"tool_use"},{"type":"text","text":"IND-SAN-001 is a potential match."}],
			"stop_reason":"end_turn","usage":{"input_tokens":120,"output_tokens":14}}`))
	})

	out, err := svc.Complete(context.Background(), driven.UserPrompt("case context", "why escalate?", 0))

	require.NoError(t, err)
	assert.Equal(t, "Escalated because IND-SAN-001 is a potential match.", out.Text)
	assert.False(t, out.Truncated)
	assert.Equal(t, 120, out.InputTokens)
	assert.Equal(t, 14, out.OutputTokens)
	assert.Equal(t, "case context", got.System)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, driven.RoleUser, got.Messages[0].Role)
}

func TestComplete_JSONPrefill(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"\"disposition\":\"CLEAR\"}"}],"stop_reason":"end_turn"}`))
	})

	req := driven.UserPrompt("", "screen Jane Doe", 4096)
	req.JSON = true
	out, err := svc.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.JSONEq(t, `{"disposition":"CLEAR"}`, out.Text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, driven.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content)
	assert.Equal(t, 4096, got.MaxTokens)
}

func TestComplete_Truncated(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"matches\":["}],"stop_reason":"max_tokens"}`))
	})

	out, err := svc.Complete(context.Background(), driven.UserPrompt("", "screen", 10))

	require.NoError(t, err)
	assert.True(t, out.Truncated)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error"}}`, domain.ErrRateLimited},
		{"bad key", http.StatusUnauthorized, `{"error":{"type":"authentication_error"}}`, domain.ErrLLMUnavailable},
		{"server error", http.StatusInternalServerError, `overloaded`, nil},
		{"empty content", http.StatusOK, `{"content":[]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Complete(context.Background(), driven.UserPrompt("", "screen", 0))

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
