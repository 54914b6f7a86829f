// Package logger is the kyc CLI's process-wide log. Warnings always reach
// stderr and are counted so a run can report them. Debug and Info lines and
// stage headers only appear under --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	level            = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	sugar            = build(out)
	warned atomic.Int64
)

// build writes bare "[LEVEL] message" lines to w. Timestamps and callers are
// left out because the output is read by the operator, not shipped.
func build(w io.Writer) *zap.SugaredLogger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel: func(l zapcore.Level, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString("[" + l.CapitalString() + "]")
		},
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Level == zapcore.WarnLevel {
			warned.Add(1)
		}
		return nil
	})).Sugar()
}

// SetVerbose switches Debug, Info and Section on or off.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.WarnLevel)
	}
}

// IsVerbose reports whether --verbose is in effect.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput redirects the log, normally to the command's stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	sugar = build(w)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debug traces a collaborator call.
func Debug(format string, args ...any) { current().Debugf(format, args...) }

// Info reports progress within a stage.
func Info(format string, args ...any) { current().Infof(format, args...) }

// Warn reports a recovered failure and counts it.
func Warn(format string, args ...any) { current().Warnf(format, args...) }

// Section prints a stage header under --verbose.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(out, "\n=== %s ===\n", name)
}

// Warnings returns how many warnings were logged since ResetWarnings.
func Warnings() int { return int(warned.Load()) }

// ResetWarnings zeroes the counter at the start of a run.
func ResetWarnings() { warned.Store(0) }
