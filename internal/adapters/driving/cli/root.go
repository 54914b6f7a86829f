// Package cli provides the kyc command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services bundles the driving ports the commands call.
type Services struct {
	Pipeline        driving.PipelineService
	Review          driving.ReviewService
	Intelligence    driving.ReviewIntelligenceService
	Settings        driving.SettingsService
	Actions         driving.CaseActionService
	Scorer          driving.RiskScorer
	Planner         driving.Planner
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig

	// Close releases stores opened for the services. May be nil.
	Close func() error
}

// Options are the persistent flags that shape how services are built.
type Options struct {
	// OutputDir overrides pipeline.output_dir when set.
	OutputDir string

	// Offline forces screening against the local list.
	Offline bool
}

// ServiceFactory builds services once flags are parsed.
type ServiceFactory func(ctx context.Context, opts Options) (*Services, error)

var (
	pipelineService     driving.PipelineService
	reviewService       driving.ReviewService
	intelligenceService driving.ReviewIntelligenceService
	settingsService     driving.SettingsService
	actionService       driving.CaseActionService
	riskScorer          driving.RiskScorer
	planner             driving.Planner
	scheduler           driving.Scheduler
	schedulerConfig     domain.SchedulerConfig

	serviceFactory ServiceFactory
	closeServices  func() error

	verbose   bool
	outputDir string
	offline   bool
)

var errNotConfigured = errors.New("not configured")

var rootCmd = &cobra.Command{
	Use:   "kyc",
	Short: "Client onboarding due diligence",
	Long: `kyc runs know-your-customer due diligence on prospective clients.

A run screens the client and its related parties, cross-references the
evidence, and pauses for a compliance officer to review before the final
decision is written.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "results directory (overrides pipeline.output_dir)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "screen against the local list only")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetServiceFactory registers the builder used before any command runs.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	pipelineService = s.Pipeline
	reviewService = s.Review
	intelligenceService = s.Intelligence
	settingsService = s.Settings
	actionService = s.Actions
	riskScorer = s.Scorer
	planner = s.Planner
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	closeServices = s.Close
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupServices(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if serviceFactory == nil || !needsServices(cmd) {
		return nil
	}
	s, err := serviceFactory(cmd.Context(), optionsFor(cmd, args))
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(s)
	return nil
}

// needsServices reports whether a command touches the services at all.
func needsServices(cmd *cobra.Command) bool {
	if cmd.HasParent() && cmd.Parent().Name() == "completion" {
		return false
	}
	switch cmd.Name() {
	case versionCmd.Name(), "help", "completion", settingsKeysCmd.Name():
		return false
	}
	return true
}

// optionsFor builds factory options. finalize reads its results root from
// the case directory unless --output is given.
func optionsFor(cmd *cobra.Command, args []string) Options {
	opts := Options{OutputDir: outputDir, Offline: offline}
	if cmd.Name() == finalizeCmd.Name() && opts.OutputDir == "" && len(args) == 1 {
		opts.OutputDir, _ = splitResultsDir(args[0])
	}
	return opts
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// requireService returns a uniform error for a missing service.
func requireService(name string, present bool) error {
	if present {
		return nil
	}
	return fmt.Errorf("%s service %w", name, errNotConfigured)
}
