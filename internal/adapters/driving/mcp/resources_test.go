package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid case URI",
			uri:      "kyc://cases/jane_doe",
			expected: "jane_doe",
		},
		{
			name:     "invalid prefix",
			uri:      "file://cases/jane_doe",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "kyc://cases/jane_doe/evidence",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractClientID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCasesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil review service returns empty list", func(t *testing.T) {
		server, err := NewServer(newTestPorts(nil))
		require.NoError(t, err)

		result, err := server.handleCasesResource(ctx, makeReadResourceRequest("kyc://cases"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns case ids", func(t *testing.T) {
		server, err := NewServer(newTestPorts(&mockReviewService{cases: []string{"jane_doe", "acme_ltd"}}))
		require.NoError(t, err)

		result, err := server.handleCasesResource(ctx, makeReadResourceRequest("kyc://cases"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "jane_doe")
		assert.Contains(t, result.Contents[0].Text, "acme_ltd")
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server, err := NewServer(newTestPorts(&mockReviewService{err: errors.New("disk error")}))
		require.NoError(t, err)

		_, err = server.handleCasesResource(ctx, makeReadResourceRequest("kyc://cases"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing cases")
	})
}

func TestServer_handleCaseResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil review service returns not found", func(t *testing.T) {
		server, err := NewServer(newTestPorts(nil))
		require.NoError(t, err)

		_, err = server.handleCaseResource(ctx, makeReadResourceRequest("kyc://cases/jane_doe"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(newTestPorts(&mockReviewService{review: pausedJaneCase()}))
		require.NoError(t, err)

		_, err = server.handleCaseResource(ctx, makeReadResourceRequest("kyc://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("unknown case returns not found", func(t *testing.T) {
		server, err := NewServer(newTestPorts(&mockReviewService{err: errors.New("no checkpoint")}))
		require.NoError(t, err)

		_, err = server.handleCaseResource(ctx, makeReadResourceRequest("kyc://cases/ghost"))
		require.Error(t, err)
	})

	t.Run("returns case output", func(t *testing.T) {
		server, err := NewServer(newTestPorts(&mockReviewService{review: pausedJaneCase()}))
		require.NoError(t, err)

		result, err := server.handleCaseResource(ctx, makeReadResourceRequest("kyc://cases/jane_doe"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"client_id": "jane_doe"`)
		assert.Contains(t, text, `"run_id": "run-1"`)
		assert.Contains(t, text, `"session_id": "s-1"`)
		assert.Equal(t, "kyc://cases/jane_doe", result.Contents[0].URI)
	})
}
