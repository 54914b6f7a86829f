package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var finalizeJSON bool

var finalizeCmd = &cobra.Command{
	Use:   "finalize RESULTS_DIR",
	Short: "Finalize a reviewed case",
	Long: `Completes a case paused for review. RESULTS_DIR is the case directory
written by 'kyc run', for example results/jane_doe.

The recorded review session is applied, the deterministic recommendation is
computed, and the final decision and summary are written to 05_output.`,
	Args: cobra.ExactArgs(1),
	RunE: runFinalize,
}

func init() {
	finalizeCmd.Flags().BoolVar(&finalizeJSON, "json", false, "output the case as JSON")
	rootCmd.AddCommand(finalizeCmd)
}

// splitResultsDir returns the results root and client id of a case directory.
func splitResultsDir(dir string) (root, clientID string) {
	clean := filepath.Clean(dir)
	return filepath.Dir(clean), filepath.Base(clean)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	if err := requireService("pipeline", pipelineService != nil); err != nil {
		return err
	}

	_, clientID := splitResultsDir(args[0])
	out, err := pipelineService.Finalize(cmd.Context(), clientID)
	if err != nil {
		return fmt.Errorf("finalize failed: %w", err)
	}

	return printCase(cmd, out, finalizeJSON)
}
