package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var patternsJSON bool

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List cross-case patterns",
	Long: `Lists patterns across the cases recorded in the configured batch window:
jurisdiction and industry clusters, regulation surges and risk trends.`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "output patterns as JSON")
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	if err := requireService("review intelligence", intelligenceService != nil); err != nil {
		return err
	}

	analytics, err := intelligenceService.Patterns(cmd.Context())
	if err != nil {
		return fmt.Errorf("pattern scan failed: %w", err)
	}

	if patternsJSON {
		data, err := json.MarshalIndent(analytics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal patterns: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Cases in window: %d\n", analytics.TotalCasesInWindow)
	if len(analytics.Patterns) == 0 {
		cmd.Println("No patterns detected.")
		return nil
	}

	cmd.Println()
	for _, p := range analytics.Patterns {
		cmd.Printf("  [%s] %s\n", p.PatternType, p.Description)
		if len(p.CaseIDs) > 0 {
			cmd.Printf("      Cases: %s\n", strings.Join(p.CaseIDs, ", "))
		}
		if p.Significance != "" {
			cmd.Printf("      %s\n", p.Significance)
		}
	}
	return nil
}
