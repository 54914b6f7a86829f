package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
)

func TestCasesCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(casesCmd.Commands()))
	for _, cmd := range casesCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"list", "show", "open", "copy"}, names)
}

func TestCasesListCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.review.cases = []string{"acme_ltd", "jane_doe"}

	out, err := execute(t, "cases", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "acme_ltd")
	assert.Contains(t, out, "jane_doe")
	assert.Contains(t, out, "Total: 2 cases")
}

func TestCasesListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cases", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No cases found.")
}

func TestCasesShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	client := domain.NewIndividual(domain.IndividualClient{FullName: "Jane Doe"})
	ts.review.review = &driving.ReviewCase{
		Checkpoint: &domain.Checkpoint{RunID: "run-9", CompletedStage: domain.PhaseReview, Client: client, UpdatedAt: testNow},
		Session: &domain.ReviewSession{
			Actions: []domain.ReviewAction{{ActionType: domain.ActionAddNote, OfficerNote: "Called client", Timestamp: testNow}},
		},
	}

	out, err := execute(t, "cases", "show", "jane_doe")

	require.NoError(t, err)
	assert.Contains(t, out, "# KYC Case: Jane Doe")
	assert.Contains(t, out, "Run: run-9")
	assert.Contains(t, out, "add_note: Called client")
}

func TestCasesShowCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.review.err = domain.ErrNoCheckpoint

	_, err := execute(t, "cases", "show", "ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoCheckpoint)
}

func TestCasesOpenAndCopy(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "cases", "open", "jane_doe")
	require.NoError(t, err)
	assert.Contains(t, out, "Opened case jane_doe.")

	out, err = execute(t, "cases", "copy", "jane_doe")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied summary of jane_doe")

	assert.Equal(t, []string{"jane_doe"}, ts.actions.opened)
	assert.Equal(t, []string{"jane_doe"}, ts.actions.copied)
}

func TestCasesCopy_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.actions.err = errors.New("no clipboard")

	_, err := execute(t, "cases", "copy", "jane_doe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy summary")
}
