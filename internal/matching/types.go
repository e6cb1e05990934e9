package matching

import (
	"fmt"
	"time"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

type SkillStatus string

const (
	StatusMatched      SkillStatus = "matched"
	StatusUnderleveled SkillStatus = "underleveled"
	StatusMissing      SkillStatus = "missing"
)

type ReadinessLevel string

const (
	ReadinessReady      ReadinessLevel = "ready"
	ReadinessDeveloping ReadinessLevel = "developing"
	ReadinessNotReady   ReadinessLevel = "not_ready"
)

// SkillMatch is the evaluation of one required skill against one candidate.
type SkillMatch struct {
	SkillID       string                    `json:"skill_id"`
	Name          string                    `json:"name"`
	Category      string                    `json:"category,omitempty"`
	RequiredLevel taxonomy.ProficiencyLevel `json:"required_level"`
	// CandidateLevel is LevelUnknown when the candidate lacks the skill. RelatedHeld names
	// held skills linked to a missing one; they earn no credit.
	CandidateLevel taxonomy.ProficiencyLevel `json:"candidate_level"`
	Gap            int                       `json:"gap"`
	Weight         float64                   `json:"weight"`
	Contribution   float64                   `json:"contribution"`
	Required       bool                      `json:"required"`
	Critical       bool                      `json:"critical"`
	Keyword        bool                      `json:"keyword,omitempty"`
	Status         SkillStatus               `json:"status"`
	Overqualified  bool                      `json:"overqualified,omitempty"`
	RelatedHeld    []string                  `json:"related_held,omitempty"`
}

// SkillResult aggregates the skill evaluations of one candidate.
type SkillResult struct {
	Matches       []SkillMatch `json:"matches"`
	Score         float64      `json:"score"`
	Matched       []string     `json:"matched,omitempty"`
	Missing       []string     `json:"missing,omitempty"`
	Underleveled  []string     `json:"underleveled,omitempty"`
	Overqualified []string     `json:"overqualified,omitempty"`
}

// Evaluated reports how many required skills were scored.
func (r SkillResult) Evaluated() int {
	return len(r.Matches)
}

type SubScores struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Readiness  float64 `json:"readiness"`
	Cultural   float64 `json:"cultural"`
	Growth     float64 `json:"growth"`
}

type MatchExplanation struct {
	Strengths                []string `json:"strengths"`
	Gaps                     []string `json:"gaps"`
	DevelopmentPath          []string `json:"development_path"`
	RiskFactors              []string `json:"risk_factors"`
	Recommendations          []string `json:"recommendations"`
	EstimatedReadinessMonths int      `json:"estimated_readiness_months"`
	Confidence               int      `json:"confidence"`
}

type CandidateMatch struct {
	CandidateID      string           `json:"candidate_id"`
	CandidateName    string           `json:"candidate_name,omitempty"`
	RequirementSetID string           `json:"requirement_set_id"`
	Version          int64            `json:"version"`
	OverallScore     int              `json:"overall_score"`
	SubScores        SubScores        `json:"sub_scores"`
	SkillMatches     []SkillMatch     `json:"skill_matches"`
	ReadinessLevel   ReadinessLevel   `json:"readiness_level"`
	Explanation      MatchExplanation `json:"explanation"`
	// Advisory marks a match computed against a requirement set with no evaluated skills.
	Advisory   bool      `json:"advisory,omitempty"`
	ComputedAt time.Time `json:"computed_at"`
}

// ComputationFailure excludes a single candidate from a ranking.
type ComputationFailure struct {
	CandidateID string
	Err         error
}

func (f *ComputationFailure) Error() string {
	return fmt.Sprintf("scoring candidate %q: %v", f.CandidateID, f.Err)
}

func (f *ComputationFailure) Unwrap() error {
	return f.Err
}

// Ranking is the ordered result of one computation for a requirement set version.
type Ranking struct {
	ComputationID    string               `json:"computation_id"`
	RequirementSetID string               `json:"requirement_set_id"`
	Version          int64                `json:"version"`
	Title            string               `json:"title,omitempty"`
	ReferenceTime    time.Time            `json:"reference_time"`
	Considered       int                  `json:"considered"`
	Matches          []CandidateMatch     `json:"matches"`
	Failures         []ComputationFailure `json:"-"`
	Warnings         []string             `json:"warnings,omitempty"`
}

// Find returns the match for a candidate id.
func (r *Ranking) Find(candidateID string) (*CandidateMatch, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Matches {
		if r.Matches[i].CandidateID == candidateID {
			return &r.Matches[i], true
		}
	}
	return nil, false
}

// Top returns at most n leading matches. n <= 0 returns all of them.
func (r *Ranking) Top(n int) []CandidateMatch {
	if r == nil {
		return nil
	}
	if n <= 0 || n >= len(r.Matches) {
		return r.Matches
	}
	return r.Matches[:n]
}
