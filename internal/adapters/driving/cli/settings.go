package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

var settingsJSON bool

// settingsInput is where interactive prompts read from. Tests replace it.
var settingsInput io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider and pipeline options.

Settings are stored in ~/.kyc/config.toml. Use subcommands to change a
single key or to configure the LLM provider interactively.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  kyc settings set pipeline.batch_window_days 14
  kyc settings set pipeline.offline true

Run 'kyc settings keys' for the accepted keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range services.SettingKeys() {
			cmd.Println(key)
		}
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for research, synthesis and review questions.`,
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsCmd, settingsShowCmd} {
		c.Flags().BoolVar(&settingsJSON, "json", false, "print settings as JSON keyed by setting name")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingRow is one line of 'settings show'.
type settingRow struct {
	key   string
	label string
	value string
}

// settingRows lists settings by section in display order. Secrets are masked.
func settingRows(settings *domain.AppSettings) map[string][]settingRow {
	llm, p := settings.LLM, settings.Pipeline

	llmRows := []settingRow{
		{"llm.provider", "Provider", llm.Provider.Description()},
		{"llm.model", "Model", llm.Model},
	}
	if llm.Provider.IsLocal() {
		llmRows = append(llmRows, settingRow{"llm.base_url", "Base URL", llm.BaseURL})
	}
	if llm.Provider.RequiresAPIKey() {
		key := fmt.Sprintf("(not set, %s)", llm.Provider.APIKeyEnv())
		if llm.APIKey != "" {
			key = maskAPIKey(llm.APIKey)
		}
		llmRows = append(llmRows, settingRow{"llm.api_key", "API Key", key})
	}

	pacing := "unlimited"
	if p.RequestsPerMinute > 0 {
		pacing = strconv.Itoa(p.RequestsPerMinute)
	}
	return map[string][]settingRow{
		"LLM": llmRows,
		"Pipeline": {
			{"pipeline.output_dir", "Output directory", p.OutputDir},
			{"pipeline.screening_list_path", "Screening list", orNotSet(p.ScreeningListPath)},
			{"pipeline.screening_list_url", "Screening list URL", orNotSet(p.ScreeningListURL)},
			{"pipeline.match_threshold", "Match threshold", strconv.FormatFloat(p.MatchThreshold, 'f', 2, 64)},
			{"pipeline.batch_window_days", "Batch window", fmt.Sprintf("%d days", p.BatchWindowDays)},
			{"pipeline.requests_per_minute", "Requests per minute", pacing},
			{"pipeline.offline", "Offline", strconv.FormatBool(p.Offline)},
		},
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	sections := settingRows(settings)
	validationErr := settingsService.Validate()

	if settingsJSON {
		flat := map[string]any{"valid": validationErr == nil}
		for _, rows := range sections {
			for _, row := range rows {
				flat[row.key] = row.value
			}
		}
		data, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	for _, name := range []string{"LLM", "Pipeline"} {
		cmd.Printf("[%s]\n", name)
		for _, row := range sections[name] {
			cmd.Printf("  %s: %s\n", row.label, row.value)
		}
		if name == "LLM" {
			state := "configured"
			if !settings.LLM.IsConfigured() {
				state = "not configured"
			}
			cmd.Printf("  Status: %s\n", state)
		}
		cmd.Println()
	}

	if validationErr != nil {
		cmd.Printf("Warning: %v\n", validationErr)
		cmd.Println("Run 'kyc settings llm' or 'kyc settings set' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if key == "llm.api_key" {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	reader := bufio.NewReader(settingsInput)
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key (blank to use %s): ", selectedProvider.APIKeyEnv())
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" && os.Getenv(selectedProvider.APIKeyEnv()) == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, else a plain line.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
