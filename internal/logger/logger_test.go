package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer and restores defaults afterwards.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	ResetWarnings()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		ResetWarnings()
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug(t *testing.T) {
	buf := capture(t, true)
	Debug("dispatch %s", "PEPDetection")
	assert.Equal(t, "[DEBUG] dispatch PEPDetection\n", buf.String())
}

func TestDebug_Quiet(t *testing.T) {
	buf := capture(t, false)
	Debug("dispatch")
	Info("stage done")
	Section("Investigation")
	assert.Zero(t, buf.Len())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Stage 2: Synthesis")
	assert.Equal(t, "\n=== Stage 2: Synthesis ===\n", buf.String())
}

func TestInfo(t *testing.T) {
	buf := capture(t, true)
	Info("%d evidence records", 42)
	assert.Equal(t, "[INFO] 42 evidence records\n", buf.String())
}

func TestWarn_AlwaysPrintedAndCounted(t *testing.T) {
	buf := capture(t, false)

	Warn("task %s failed", "EntityVerification")
	Warn("checkpoint field %q reset", "synthesis")

	assert.Equal(t, "[WARN] task EntityVerification failed\n[WARN] checkpoint field \"synthesis\" reset\n", buf.String())
	assert.Equal(t, 2, Warnings())

	ResetWarnings()
	assert.Zero(t, Warnings())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
			Debug("concurrent %d", n)
			Warn("concurrent %d", n)
			IsVerbose()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, Warnings())
}
