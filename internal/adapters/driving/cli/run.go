package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

var (
	runClientFile string
	runResume     bool
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run due diligence on a client",
	Long: `Runs intake, investigation, synthesis and review intelligence for a
client file (JSON or YAML) and pauses for the compliance officer.

Use --resume to reuse the stages already recorded in the client's checkpoint.
Review the paused case with 'kyc review CLIENT_ID' and complete it with
'kyc finalize RESULTS_DIR'.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runClientFile, "client", "c", "", "client file (.json, .yaml)")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "resume from the last checkpoint")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the case as JSON")
	_ = runCmd.MarkFlagRequired("client") //nolint:errcheck // flag is defined above
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if err := requireService("pipeline", pipelineService != nil); err != nil {
		return err
	}

	client, err := file.LoadClient(runClientFile)
	if err != nil {
		return fmt.Errorf("loading client: %w", err)
	}

	out, err := pipelineService.Run(cmd.Context(), client, driving.RunOptions{Resume: runResume})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	return printCase(cmd, out, runJSON)
}

// printCase writes a case as JSON, a styled terminal summary, or markdown.
func printCase(cmd *cobra.Command, out *domain.CaseOutput, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal case: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if isTerminal(cmd) {
		cmd.Print(styledSummary(out))
		return nil
	}
	cmd.Print(services.RenderSummary(out))
	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
