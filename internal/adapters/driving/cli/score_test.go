package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

func TestScoreCmd_Individual(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := writeClientFile(t, t.TempDir(), "jane.json", janeJSON)

	out, err := execute(t, "score", "--client", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe (individual)")
	assert.Contains(t, out, "Risk: ")
	assert.Contains(t, out, string(domain.TaskIndividualSanctions))
	assert.Empty(t, ts.pipeline.runs, "score must not run the pipeline")
}

func TestScoreCmd_BusinessCascade(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := writeClientFile(t, t.TempDir(), "maple.yaml", `client_type: business
legal_name: Maple Ltd
beneficial_owners:
  - full_name: Ada Obi
    ownership_percentage: 60
`)

	out, err := execute(t, "score", "--client", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Related parties screened: Ada Obi")
}

func TestScoreCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	path := writeClientFile(t, t.TempDir(), "jane.json", janeJSON)

	out, err := execute(t, "score", "--client", path, "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"client_id": "jane_doe"`)
	assert.Contains(t, out, `"preliminary_risk"`)
}

func TestScoreCmd_PlannerNotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	planner = nil
	path := writeClientFile(t, t.TempDir(), "jane.json", janeJSON)

	_, err := execute(t, "score", "--client", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner service not configured")
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "(none)", joinNames([]domain.TaskName{}))
	assert.Equal(t, "A, B", joinNames([]domain.Regulation{"A", "B"}))
}
