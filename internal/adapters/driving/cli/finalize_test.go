package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitResultsDir(t *testing.T) {
	tests := []struct {
		dir      string
		root     string
		clientID string
	}{
		{"results/jane_doe", "results", "jane_doe"},
		{"results/jane_doe/", "results", "jane_doe"},
		{"jane_doe", ".", "jane_doe"},
		{filepath.Join("/tmp", "cases", "acme"), filepath.Join("/tmp", "cases"), "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			root, id := splitResultsDir(tt.dir)
			assert.Equal(t, tt.root, root)
			assert.Equal(t, tt.clientID, id)
		})
	}
}

func TestFinalizeCmd_FinalizesCase(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "finalize", "results/jane_doe")

	require.NoError(t, err)
	assert.Equal(t, []string{"jane_doe"}, ts.pipeline.finalized)
	assert.Contains(t, out, "Decision: APPROVE")
}

func TestFinalizeCmd_RequiresDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "finalize")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestFinalizeCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.pipeline.err = errors.New("review not reached")

	_, err := execute(t, "finalize", "results/jane_doe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalize failed")
}

func TestFinalizeCmd_FactoryUsesParentDir(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var got Options
	SetServiceFactory(func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{Pipeline: ts.pipeline}, nil
	})

	_, err := execute(t, "finalize", filepath.Join("out", "cases", "jane_doe"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "cases"), got.OutputDir)
}

func TestFinalizeCmd_OutputFlagWins(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var got Options
	SetServiceFactory(func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{Pipeline: ts.pipeline}, nil
	})

	_, err := execute(t, "finalize", "--output", "elsewhere", "results/jane_doe")

	require.NoError(t, err)
	assert.Equal(t, "elsewhere", got.OutputDir)
}
