package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/services"
)

// ClientInput is the input schema for tools that take a client record.
type ClientInput struct {
	Client string `json:"client" jsonschema:"the client intake record as JSON or YAML"`
	Format string `json:"format,omitempty" jsonschema:"json (default) or yaml"`
}

// ScoreOutput is the output schema for the score_client tool.
type ScoreOutput struct {
	ClientID   string              `json:"client_id"`
	ClientType domain.ClientType   `json:"client_type"`
	RiskLevel  domain.RiskLevel    `json:"risk_level"`
	TotalScore int                 `json:"total_score"`
	Factors    []domain.RiskFactor `json:"factors"`
}

// PlanOutput is the output schema for the plan_investigation tool.
type PlanOutput struct {
	ClientID        string               `json:"client_id"`
	ClientType      domain.ClientType    `json:"client_type"`
	RiskLevel       domain.RiskLevel     `json:"preliminary_risk_level"`
	Tasks           []domain.TaskName    `json:"tasks"`
	Utilities       []domain.UtilityName `json:"utilities"`
	Regulations     []domain.Regulation  `json:"applicable_regulations"`
	CascadeSubjects []string             `json:"cascade_subjects,omitempty"`
}

// CaseInput is the input schema for the review_case tool.
type CaseInput struct {
	ClientID string `json:"client_id" jsonschema:"the client id of a case written by kyc run"`
}

// CaseOutput is the output schema for the review_case tool.
type CaseOutput struct {
	ClientID            string          `json:"client_id"`
	Stage               string          `json:"completed_stage"`
	RiskLevel           string          `json:"risk_level,omitempty"`
	RiskScore           int             `json:"risk_score"`
	RecommendedDecision domain.Decision `json:"recommended_decision,omitempty"`
	EvidenceCount       int             `json:"evidence_count"`
	ConfidenceGrade     domain.Grade    `json:"confidence_grade,omitempty"`
	DiscussionPoints    []string        `json:"discussion_points,omitempty"`
	Finalized           bool            `json:"finalized"`
	Summary             string          `json:"summary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "score_client",
		Description: "Compute the preliminary KYC risk score of a client record",
	}, s.handleScoreClient)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "plan_investigation",
		Description: "List the screening tasks, utilities and regulations that apply to a client record",
	}, s.handlePlanInvestigation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "review_case",
		Description: "Summarise a case paused for compliance review",
	}, s.handleReviewCase)
}

func decodeClientInput(input ClientInput) (domain.Client, error) {
	ext := ".json"
	if input.Format == "yaml" || input.Format == "yml" {
		ext = ".yaml"
	}
	client, err := file.DecodeClient([]byte(input.Client), ext)
	if err != nil {
		return domain.Client{}, fmt.Errorf("decoding client: %w", err)
	}
	return client, nil
}

// handleScoreClient handles the score_client tool invocation.
func (s *Server) handleScoreClient(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClientInput,
) (*mcp.CallToolResult, ScoreOutput, error) {
	client, err := decodeClientInput(input)
	if err != nil {
		return nil, ScoreOutput{}, err
	}

	risk := s.ports.Scorer.Score(client)
	return nil, ScoreOutput{
		ClientID:   client.ID(),
		ClientType: client.Type(),
		RiskLevel:  risk.RiskLevel,
		TotalScore: risk.TotalScore,
		Factors:    risk.RiskFactors,
	}, nil
}

// handlePlanInvestigation handles the plan_investigation tool invocation.
func (s *Server) handlePlanInvestigation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClientInput,
) (*mcp.CallToolResult, PlanOutput, error) {
	client, err := decodeClientInput(input)
	if err != nil {
		return nil, PlanOutput{}, err
	}

	plan := s.ports.Planner.Plan(client)
	return nil, PlanOutput{
		ClientID:        plan.ClientID,
		ClientType:      plan.ClientType,
		RiskLevel:       plan.PreliminaryRisk.RiskLevel,
		Tasks:           plan.Tasks,
		Utilities:       plan.Utilities,
		Regulations:     plan.ApplicableRegulations,
		CascadeSubjects: plan.CascadeSubjects,
	}, nil
}

// handleReviewCase handles the review_case tool invocation.
func (s *Server) handleReviewCase(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CaseInput,
) (*mcp.CallToolResult, CaseOutput, error) {
	if s.ports.Review == nil {
		return nil, CaseOutput{}, ErrReviewUnavailable
	}

	rc, err := s.ports.Review.Open(ctx, input.ClientID)
	if err != nil {
		return nil, CaseOutput{}, fmt.Errorf("opening case: %w", err)
	}

	out := services.CaseOutputFrom(rc.Checkpoint, rc.Session, time.Now())
	result := CaseOutput{
		ClientID:      out.ClientID,
		Stage:         rc.Checkpoint.CompletedStage.String(),
		EvidenceCount: out.EvidenceCount,
		Finalized:     rc.Session != nil && rc.Session.Finalized,
		Summary:       services.RenderSummary(out),
	}
	if risk := out.FinalRisk(); risk != nil {
		result.RiskLevel = string(risk.RiskLevel)
		result.RiskScore = risk.TotalScore
	}
	if out.Synthesis != nil {
		result.RecommendedDecision = out.Synthesis.RecommendedDecision
	}
	if ri := out.ReviewIntelligence; ri != nil {
		result.ConfidenceGrade = ri.Confidence.Grade
		for _, dp := range ri.DiscussionPoints {
			result.DiscussionPoints = append(result.DiscussionPoints, fmt.Sprintf("[%s] %s", dp.Severity, dp.Title))
		}
	}
	return nil, result, nil
}
