package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

var (
	reviewNote         string
	reviewApprovals    []string
	reviewOverrideRisk string
	reviewQuestion     string
)

var reviewCmd = &cobra.Command{
	Use:   "review [CLIENT_ID]",
	Short: "Review a paused case",
	Long: `Opens the review console for a paused case, or for the case list when
no client id is given.

With any of the action flags the actions are recorded directly without the
console:
  kyc review jane_doe --approve EV_003=FALSE_POSITIVE
  kyc review jane_doe --note "Source of wealth confirmed by bank letter"
  kyc review jane_doe --override-risk HIGH
  kyc review jane_doe --ask "Which findings rely on a single source?"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewNote, "note", "", "add an officer note")
	reviewCmd.Flags().StringArrayVar(&reviewApprovals, "approve", nil, "approve a disposition as EVIDENCE_ID=DISPOSITION (repeatable)")
	reviewCmd.Flags().StringVar(&reviewOverrideRisk, "override-risk", "", "override the risk level (LOW, MEDIUM, HIGH, CRITICAL)")
	reviewCmd.Flags().StringVar(&reviewQuestion, "ask", "", "ask the review assistant a question")
	rootCmd.AddCommand(reviewCmd)
}

func hasReviewActions() bool {
	return reviewNote != "" || len(reviewApprovals) > 0 || reviewOverrideRisk != "" || reviewQuestion != ""
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := requireService("review", reviewService != nil); err != nil {
		return err
	}

	clientID := ""
	if len(args) == 1 {
		clientID = args[0]
	}

	if !hasReviewActions() {
		return launchConsole(cmd, clientID)
	}
	if clientID == "" {
		return errors.New("a client id is required with action flags")
	}

	actions, err := reviewActions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, action := range actions {
		if _, err := reviewService.Record(ctx, clientID, action); err != nil {
			return fmt.Errorf("recording %s: %w", action.ActionType, err)
		}
		cmd.Printf("Recorded %s\n", describeAction(action))
	}

	if reviewQuestion != "" {
		answer, err := reviewService.Ask(ctx, clientID, reviewQuestion)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		cmd.Printf("Q: %s\n", reviewQuestion)
		cmd.Printf("A: %s\n", answer)
	}
	return nil
}

// reviewActions converts the action flags into review actions in a fixed
// order: dispositions, risk override, then the note.
func reviewActions() ([]domain.ReviewAction, error) {
	var actions []domain.ReviewAction

	for _, pair := range reviewApprovals {
		id, disp, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: --approve expects EVIDENCE_ID=DISPOSITION, got %q", domain.ErrInvalidInput, pair)
		}
		d := domain.Disposition(strings.ToUpper(strings.TrimSpace(disp)))
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: unknown disposition %q", domain.ErrInvalidInput, disp)
		}
		actions = append(actions, domain.ReviewAction{
			ActionType:          domain.ActionApproveDisposition,
			EvidenceID:          strings.TrimSpace(id),
			ApprovedDisposition: d,
		})
	}

	if reviewOverrideRisk != "" {
		level := domain.RiskLevel(strings.ToUpper(reviewOverrideRisk))
		if !level.IsValid() {
			return nil, fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalidInput, reviewOverrideRisk)
		}
		actions = append(actions, domain.ReviewAction{ActionType: domain.ActionOverrideRisk, RiskLevel: level})
	}

	if reviewNote != "" {
		actions = append(actions, domain.ReviewAction{ActionType: domain.ActionAddNote, OfficerNote: reviewNote})
	}
	return actions, nil
}

func describeAction(a domain.ReviewAction) string {
	switch a.ActionType {
	case domain.ActionApproveDisposition:
		return fmt.Sprintf("disposition %s for %s", a.ApprovedDisposition, a.EvidenceID)
	case domain.ActionOverrideRisk:
		return fmt.Sprintf("risk override to %s", a.RiskLevel)
	case domain.ActionAddNote:
		return "note"
	default:
		return string(a.ActionType)
	}
}
