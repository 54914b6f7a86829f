package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Manage stored cases",
	Long:  `List, show, open or copy the cases written by 'kyc run'.`,
}

var casesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cases",
	Args:  cobra.NoArgs,
	RunE:  runCasesList,
}

var casesShowCmd = &cobra.Command{
	Use:   "show [client-id]",
	Short: "Print a case summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCasesShow,
}

var casesOpenCmd = &cobra.Command{
	Use:   "open [client-id]",
	Short: "Open the case directory in the file browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runCasesOpen,
}

var casesCopyCmd = &cobra.Command{
	Use:   "copy [client-id]",
	Short: "Copy the case summary to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runCasesCopy,
}

func init() {
	casesCmd.AddCommand(casesListCmd)
	casesCmd.AddCommand(casesShowCmd)
	casesCmd.AddCommand(casesOpenCmd)
	casesCmd.AddCommand(casesCopyCmd)
	rootCmd.AddCommand(casesCmd)
}

func runCasesList(cmd *cobra.Command, _ []string) error {
	if err := requireService("review", reviewService != nil); err != nil {
		return err
	}

	ids, err := reviewService.Cases(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	if len(ids) == 0 {
		cmd.Println("No cases found.")
		return nil
	}

	for _, id := range ids {
		cmd.Printf("  %s\n", id)
	}
	cmd.Printf("\nTotal: %d cases\n", len(ids))
	return nil
}

func runCasesShow(cmd *cobra.Command, args []string) error {
	if err := requireService("review", reviewService != nil); err != nil {
		return err
	}

	rc, err := reviewService.Open(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to open case: %w", err)
	}

	cmd.Print(services.RenderSummary(services.CaseOutputFrom(rc.Checkpoint, rc.Session, rc.Checkpoint.UpdatedAt)))
	return nil
}

func runCasesOpen(cmd *cobra.Command, args []string) error {
	if err := requireService("case action", actionService != nil); err != nil {
		return err
	}

	if err := actionService.OpenCase(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to open case: %w", err)
	}

	cmd.Printf("Opened case %s.\n", args[0])
	return nil
}

func runCasesCopy(cmd *cobra.Command, args []string) error {
	if err := requireService("case action", actionService != nil); err != nil {
		return err
	}

	if err := actionService.CopySummary(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to copy summary: %w", err)
	}

	cmd.Printf("Copied summary of %s to the clipboard.\n", args[0])
	return nil
}
