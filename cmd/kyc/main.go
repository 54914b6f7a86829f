// Command kyc runs the KYC onboarding pipeline and review console.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/kyc-onboard/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/metrics/prom"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/research"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/screening/csl"
	storagefile "github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/cli"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceFactory(buildServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildServices(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configDir, err := configfile.DefaultDir()
	if err != nil {
		return nil, err
	}

	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	pipelineSettings := settings.Pipeline
	if opts.OutputDir != "" {
		pipelineSettings.OutputDir = opts.OutputDir
	}
	if opts.Offline {
		pipelineSettings.Offline = true
	}
	config := settingsService.GetPipelineConfig()

	prompts, err := configfile.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	caseStore, err := storagefile.NewCaseStore(pipelineSettings.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening case store: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	list := csl.New(csl.Config{
		Path:   screeningListPath(configDir, pipelineSettings.ScreeningListPath),
		URL:    pipelineSettings.ScreeningListURL,
		APIKey: os.Getenv(csl.APIKeyEnv),
	})

	llm := newLLM(&settings.LLM, pipelineSettings.Offline)

	var (
		investigator driven.Investigator
		synthesis    driven.SynthesisService
		assistant    driven.ReviewAssistant
	)
	if llm != nil {
		investigator = research.NewInvestigator(llm, prompts, research.Options{
			RequestsPerMinute: pipelineSettings.RequestsPerMinute,
			Clock:             config.Now,
		})
		synthesis = research.NewSynthesizer(llm, prompts)
		assistant = research.NewAssistant(llm, prompts)
	} else {
		investigator = research.NewOffline(list, pipelineSettings.MatchThreshold, config.Now)
	}

	scorer := services.NewRiskScorer(config.Now)
	planner := services.NewPlanner(scorer)
	intelligence := services.NewReviewIntelligence(store.CaseLog(), config)

	pipeline := services.NewPipeline(
		caseStore,
		investigator,
		synthesis,
		planner,
		scorer,
		intelligence,
		store.EvidenceLedger(),
		prom.NewRecorder(pipelineSettings.OutputDir),
		config,
	)

	schedulerConfig := domain.DefaultSchedulerConfig()

	return &cli.Services{
		Pipeline:        pipeline,
		Review:          services.NewReviewService(caseStore, assistant, config),
		Intelligence:    intelligence,
		Settings:        settingsService,
		Actions:         services.NewCaseActionService(caseStore, config),
		Scorer:          scorer,
		Planner:         planner,
		Scheduler:       services.NewScheduler(schedulerConfig, store.SchedulerStore(), list, intelligence),
		SchedulerConfig: schedulerConfig,
		Close: func() error {
			var errs []error
			if llm != nil {
				errs = append(errs, llm.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

// newLLM builds the configured model client. Offline runs and unusable
// settings return nil so research falls back to the local list.
func newLLM(settings *domain.LLMSettings, offline bool) driven.LLMService {
	if offline {
		return nil
	}
	llm, err := ai.CreateLLMService(settings)
	if err != nil {
		logger.Warn("LLM unavailable, screening offline: %v", err)
		return nil
	}
	if llm == nil {
		logger.Debug("no LLM configured, screening offline")
	}
	return llm
}

func screeningListPath(configDir, configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(configDir, csl.CacheFile)
}
