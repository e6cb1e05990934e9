package matching

import (
	"strings"
	"time"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// Scorer computes the overall match of a candidate from five sub-scores.
type Scorer struct {
	cfg       Config
	evaluator *Evaluator
	explainer *Explainer
}

func NewScorer(cfg Config, tax *taxonomy.Taxonomy) *Scorer {
	return &Scorer{
		cfg:       cfg,
		evaluator: NewEvaluator(cfg, tax),
		explainer: NewExplainer(cfg),
	}
}

// Score is a pure function of the candidate snapshot, the requirement set version and now.
func (s *Scorer) Score(c *profile.Candidate, set *requirements.RequirementSet, now time.Time) CandidateMatch {
	skills := s.evaluator.Evaluate(c, set, now)

	sub := SubScores{
		Skills:     skills.Score,
		Experience: ExperienceScore(c.TotalExperience(), set.ExperienceYears),
		Readiness:  ReadinessScore(c, now),
		Cultural:   CulturalScore(c, set.Department),
		Growth:     GrowthScore(c, now),
	}
	overall := s.cfg.Overall(sub)

	return CandidateMatch{
		CandidateID:      c.ID,
		CandidateName:    c.Name,
		RequirementSetID: set.ID,
		Version:          set.Version,
		OverallScore:     overall,
		SubScores:        sub,
		SkillMatches:     skills.Matches,
		ReadinessLevel:   s.cfg.ReadinessLevel(overall),
		Explanation:      s.explainer.Explain(skills, sub),
		Advisory:         skills.Evaluated() == 0,
		ComputedAt:       now,
	}
}

// ExperienceScore rates total years against the required range. Max == 0 is unbounded.
func ExperienceScore(total float64, r requirements.ExperienceRange) float64 {
	score := 50.0
	if total >= r.Min {
		score += 20
		if r.Max == 0 || total <= r.Max {
			score += 20
		} else {
			score -= min(20, 2*(total-r.Max))
		}
	} else {
		score -= min(40, 10*(r.Min-total))
	}
	return clamp(score)
}

func ReadinessScore(c *profile.Candidate, now time.Time) float64 {
	score := 50.0
	if c.ReadinessForRotation {
		score += 30
	}
	score += 20 * float64(c.ProfileCompleteness) / 100
	if c.LastActiveAt != nil && !c.LastActiveAt.Before(now.AddDate(0, 0, -30)) {
		score += 10
	}
	return clamp(score)
}

// CulturalScore rewards history in the target department and prior internal moves.
func CulturalScore(c *profile.Candidate, department string) float64 {
	score := 70.0
	if department != "" {
		same := strings.EqualFold(c.Department, department)
		for _, r := range c.ExperienceRecords {
			if strings.EqualFold(r.Department, department) {
				same = true
			}
		}
		if same {
			score += 20
		}
	}
	for _, r := range c.ExperienceRecords {
		if r.Internal && r.Department != "" && !strings.EqualFold(r.Department, c.Department) {
			score += 10
			break
		}
	}
	return clamp(score)
}

func GrowthScore(c *profile.Candidate, now time.Time) float64 {
	score := 50.0
	if n := len(c.CareerGoals); n > 0 {
		score += min(25, 15+5*float64(n-1))
	}

	cutoff := now.AddDate(0, -6, 0)
	recent := 0
	for _, s := range c.Skills {
		if s.UpdatedAt != nil && !s.UpdatedAt.Before(cutoff) {
			recent++
		}
	}
	score += min(25, 5*float64(recent))
	return clamp(score)
}
