package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
)

var (
	scoreClientFile string
	scoreJSON       bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and plan a client without investigating",
	Long: `Computes the preliminary risk score and the investigation plan for a
client file. Nothing is screened and nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreClientFile, "client", "c", "", "client file (.json, .yaml)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output the plan as JSON")
	_ = scoreCmd.MarkFlagRequired("client") //nolint:errcheck // flag is defined above
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := requireService("planner", planner != nil); err != nil {
		return err
	}

	client, err := file.LoadClient(scoreClientFile)
	if err != nil {
		return fmt.Errorf("loading client: %w", err)
	}

	plan := planner.Plan(client)

	if scoreJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	risk := plan.PreliminaryRisk
	cmd.Printf("%s (%s)\n", client.Name(), plan.ClientType)
	cmd.Printf("Risk: %s (%d points)\n", risk.RiskLevel, risk.TotalScore)
	for _, f := range risk.RiskFactors {
		cmd.Printf("  %+d %s [%s]\n", f.Points, f.Factor, f.Category)
	}

	cmd.Println()
	cmd.Printf("Tasks: %s\n", joinNames(plan.Tasks))
	cmd.Printf("Utilities: %s\n", joinNames(plan.Utilities))
	if len(plan.ApplicableRegulations) > 0 {
		cmd.Printf("Regulations: %s\n", joinNames(plan.ApplicableRegulations))
	}
	if plan.CascadeNeeded {
		cmd.Printf("Related parties screened: %s\n", strings.Join(plan.CascadeSubjects, ", "))
	}
	return nil
}

func joinNames[T ~string](names []T) string {
	if len(names) == 0 {
		return "(none)"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
