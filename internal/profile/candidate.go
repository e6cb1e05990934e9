package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// Source returns a snapshot of the candidate pool.
type Source interface {
	Candidates(ctx context.Context) ([]*Candidate, error)
}

type Candidate struct {
	ID                   string             `json:"id" mapstructure:"id"`
	Name                 string             `json:"name,omitempty" mapstructure:"name"`
	Department           string             `json:"department,omitempty" mapstructure:"department"`
	Skills               []CandidateSkill   `json:"skills,omitempty" mapstructure:"skills"`
	ExperienceRecords    []ExperienceRecord `json:"experience,omitempty" mapstructure:"experience"`
	ProfileCompleteness  int                `json:"profile_completeness" mapstructure:"profile_completeness"`
	ReadinessForRotation bool               `json:"readiness_for_rotation" mapstructure:"readiness_for_rotation"`
	CareerGoals          []string           `json:"career_goals,omitempty" mapstructure:"career_goals"`
	LastActiveAt         *time.Time         `json:"last_active_at,omitempty" mapstructure:"last_active_at"`
}

type CandidateSkill struct {
	SkillID           string                    `json:"skill_id" mapstructure:"skill_id"`
	Name              string                    `json:"name,omitempty" mapstructure:"name"`
	Level             taxonomy.ProficiencyLevel `json:"level" mapstructure:"level"`
	Endorsements      int                       `json:"endorsements,omitempty" mapstructure:"endorsements"`
	YearsOfExperience float64                   `json:"years_of_experience,omitempty" mapstructure:"years_of_experience"`
	LastUsedAt        *time.Time                `json:"last_used_at,omitempty" mapstructure:"last_used_at"`
	UpdatedAt         *time.Time                `json:"updated_at,omitempty" mapstructure:"updated_at"`
}

type ExperienceRecord struct {
	Title      string  `json:"title,omitempty" mapstructure:"title"`
	Department string  `json:"department,omitempty" mapstructure:"department"`
	Company    string  `json:"company,omitempty" mapstructure:"company"`
	Years      float64 `json:"years" mapstructure:"years"`
	// Internal marks a position held inside the company.
	Internal bool `json:"internal,omitempty" mapstructure:"internal"`
}

// TotalExperience sums the years of all experience records.
func (c *Candidate) TotalExperience() float64 {
	var total float64
	for _, r := range c.ExperienceRecords {
		total += r.Years
	}
	return total
}

// Validate checks the invariants a candidate must hold before it can be scored.
func (c *Candidate) Validate() error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}
	if c.ID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if c.ProfileCompleteness < 0 || c.ProfileCompleteness > 100 {
		return fmt.Errorf("profile completeness %d is outside [0,100]", c.ProfileCompleteness)
	}
	for i, s := range c.Skills {
		if s.SkillID == "" && s.Name == "" {
			return fmt.Errorf("skill #%d has neither id nor name", i)
		}
		if !s.Level.Valid() {
			return fmt.Errorf("skill %q has invalid level %d", s.SkillID, s.Level)
		}
		if s.Endorsements < 0 {
			return fmt.Errorf("skill %q has negative endorsements", s.SkillID)
		}
		if s.YearsOfExperience < 0 {
			return fmt.Errorf("skill %q has negative years of experience", s.SkillID)
		}
	}
	for i, r := range c.ExperienceRecords {
		if r.Years < 0 {
			return fmt.Errorf("experience record #%d has negative years", i)
		}
	}
	return nil
}
