package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/tui"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// runConsole runs a built console. Tests replace it to avoid a terminal.
var runConsole = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the review console",
	Long: `Launch the interactive review console.

The console lists paused cases, shows the risk, recommendation and review
intelligence of each, and records the officer's dispositions, notes, risk
overrides and questions before the case is finalized.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	return launchConsole(cmd, "")
}

// consolePorts builds the console ports from the configured services.
func consolePorts() *tui.Ports {
	ports := tui.NewPorts(reviewService, pipelineService)
	ports.Intelligence = intelligenceService
	ports.Settings = settingsService
	ports.Actions = actionService
	return ports
}

func launchConsole(cmd *cobra.Command, clientID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in review console: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("review console panicked: %v", r)
		}
	}()

	app, err := tui.NewApp(consolePorts(), clientID)
	if err != nil {
		return fmt.Errorf("failed to create review console: %w", err)
	}

	// The console is long-running, so scheduled upkeep runs alongside it.
	stop := startScheduler(cmd.Context())
	defer stop()

	app.WithContext(cmd.Context())
	if err := runConsole(app); err != nil {
		return fmt.Errorf("review console error: %w", err)
	}
	return nil
}

// startScheduler runs the background scheduler when enabled and returns the
// function that stops it.
func startScheduler(parent context.Context) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(parent)
	go func() {
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}
}
