package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/mcp"
)

func TestMCPCmd_HasServe(t *testing.T) {
	require.Len(t, mcpCmd.Commands(), 1)
	assert.Equal(t, "serve", mcpServeCmd.Use)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
	assert.Equal(t, "127.0.0.1", mcpServeCmd.Flags().Lookup("host").DefValue)
	for _, tool := range []string{"score_client", "plan_investigation", "review_case"} {
		assert.Contains(t, mcpServeCmd.Long, tool)
	}
}

func TestMCPServe_RequiresScorer(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	riskScorer = nil

	_, err := execute(t, "mcp", "serve")

	require.Error(t, err)
	assert.ErrorIs(t, err, mcp.ErrMissingScorer)
}
