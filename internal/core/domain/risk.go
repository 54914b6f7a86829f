package domain

// RiskLevel is the coarse classification derived from a risk score.
type RiskLevel string

// Risk levels in ascending order of severity.
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Score breakpoints (inclusive upper bounds).
const (
	lowMaxScore    = 15
	mediumMaxScore = 35
	highMaxScore   = 60
)

// LevelForScore maps a total score onto its risk level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score <= lowMaxScore:
		return RiskLow
	case score <= mediumMaxScore:
		return RiskMedium
	case score <= highMaxScore:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Rank orders levels from LOW (0) to CRITICAL (3).
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// IsValid returns true if the level is recognised.
func (l RiskLevel) IsValid() bool {
	return l.Rank() >= 0
}

// String returns the string representation.
func (l RiskLevel) String() string {
	return string(l)
}

// RiskFactor is a single contribution to a risk score.
type RiskFactor struct {
	Factor   string `json:"factor"`
	Points   int    `json:"points"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

// Score history stages.
const (
	StageIntake            = "intake"
	StageSynthesisRevision = "synthesis_revision"
)

// ScoreHistoryEntry records the score at a point in the pipeline.
type ScoreHistoryEntry struct {
	Stage string    `json:"stage"`
	Score int       `json:"score"`
	Level RiskLevel `json:"level"`
}

// RiskAssessment is a point-weighted risk score with its contributing factors.
// TotalScore always equals the sum of factor points.
type RiskAssessment struct {
	TotalScore    int                 `json:"total_score"`
	RiskLevel     RiskLevel           `json:"risk_level"`
	RiskFactors   []RiskFactor        `json:"risk_factors"`
	IsPreliminary bool                `json:"is_preliminary"`
	ScoreHistory  []ScoreHistoryEntry `json:"score_history"`
}

// NewRiskAssessment builds a preliminary assessment from factors and
// records the intake entry in its history.
func NewRiskAssessment(factors []RiskFactor) RiskAssessment {
	if factors == nil {
		factors = []RiskFactor{}
	}
	ra := RiskAssessment{
		RiskFactors:   factors,
		IsPreliminary: true,
	}
	ra.recompute()
	ra.ScoreHistory = []ScoreHistoryEntry{{Stage: StageIntake, Score: ra.TotalScore, Level: ra.RiskLevel}}
	return ra
}

func (r *RiskAssessment) recompute() {
	total := 0
	for _, f := range r.RiskFactors {
		total += f.Points
	}
	r.TotalScore = total
	r.RiskLevel = LevelForScore(total)
}

// WithFactors returns a copy with extra factors appended and the score recomputed.
// The receiver is left untouched.
func (r RiskAssessment) WithFactors(stage string, extra ...RiskFactor) RiskAssessment {
	out := RiskAssessment{
		RiskFactors:   make([]RiskFactor, 0, len(r.RiskFactors)+len(extra)),
		ScoreHistory:  make([]ScoreHistoryEntry, 0, len(r.ScoreHistory)+1),
		IsPreliminary: false,
	}
	out.RiskFactors = append(out.RiskFactors, r.RiskFactors...)
	out.RiskFactors = append(out.RiskFactors, extra...)
	out.recompute()
	out.ScoreHistory = append(out.ScoreHistory, r.ScoreHistory...)
	out.ScoreHistory = append(out.ScoreHistory, ScoreHistoryEntry{Stage: stage, Score: out.TotalScore, Level: out.RiskLevel})
	return out
}

// FactorsIn returns the factors in a category.
func (r RiskAssessment) FactorsIn(category string) []RiskFactor {
	var out []RiskFactor
	for _, f := range r.RiskFactors {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// PartyScore is the derived score for a related party such as a beneficial owner.
// Scores are kept in declaration order so ties resolve deterministically.
type PartyScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
