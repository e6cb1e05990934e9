package requirements

import (
	"context"
	"errors"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// ErrNotFound is returned by a Source that has no requirement set for the id.
var ErrNotFound = errors.New("requirement set not found")

// Source provides requirement drafts together with their current version.
type Source interface {
	Draft(ctx context.Context, id string) (Draft, int64, error)
}

// ExperienceRange is a closed interval of years. Max == 0 means unbounded.
type ExperienceRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Draft is a raw requirement set as authored by a recruiter or extracted from free text.
type Draft struct {
	ID                string          `json:"id" mapstructure:"id"`
	Title             string          `json:"title,omitempty" mapstructure:"title"`
	Skills            []DraftSkill    `json:"skills" mapstructure:"skills"`
	Keywords          []string        `json:"keywords,omitempty" mapstructure:"keywords"`
	ExperienceYears   ExperienceRange `json:"experience_years" mapstructure:"experience_years"`
	Department        string          `json:"department,omitempty" mapstructure:"department"`
	Level             string          `json:"level,omitempty" mapstructure:"level"`
	ReadinessRequired *bool           `json:"readiness_required,omitempty" mapstructure:"readiness_required"`
	SourceText        string          `json:"source_text,omitempty" mapstructure:"source_text"`
}

// DraftSkill is one skill of a draft. SkillID or Name identify the skill; SkillID wins
// when both are set. Weight is the importance in [0,1]: nil means DefaultWeight, an
// explicit 0 is kept.
type DraftSkill struct {
	SkillID  string                    `json:"skill_id,omitempty" mapstructure:"skill_id"`
	Name     string                    `json:"name,omitempty" mapstructure:"name"`
	Level    taxonomy.ProficiencyLevel `json:"level,omitempty" mapstructure:"level"`
	Weight   *float64                  `json:"weight,omitempty" mapstructure:"weight"`
	Critical bool                      `json:"critical,omitempty" mapstructure:"critical"`
	Required *bool                     `json:"required,omitempty" mapstructure:"required"`
}

// RequirementSet is the canonical, versioned requirement set. It is replaced, never mutated.
type RequirementSet struct {
	ID                string          `json:"id"`
	Version           int64           `json:"version"`
	Title             string          `json:"title,omitempty"`
	RequiredSkills    []RequiredSkill `json:"required_skills"`
	ExperienceYears   ExperienceRange `json:"experience_years"`
	Department        string          `json:"department,omitempty"`
	Level             string          `json:"level,omitempty"`
	ReadinessRequired *bool           `json:"readiness_required,omitempty"`
	SourceText        string          `json:"source_text,omitempty"`
}

type RequiredSkill struct {
	SkillID    string                    `json:"skill_id"`
	Name       string                    `json:"name"`
	Category   string                    `json:"category,omitempty"`
	Level      taxonomy.ProficiencyLevel `json:"level"`
	Weight     float64                   `json:"weight"`
	IsCritical bool                      `json:"is_critical"`
	Required   bool                      `json:"required"`
	// Keyword marks a name that did not resolve against the taxonomy.
	Keyword bool `json:"keyword,omitempty"`
}

// RequiresReadiness reports whether only rotation-ready candidates qualify.
func (r *RequirementSet) RequiresReadiness() bool {
	return r != nil && r.ReadinessRequired != nil && *r.ReadinessRequired
}

// Skill returns the requirement for a skill id.
func (r *RequirementSet) Skill(id string) (RequiredSkill, bool) {
	for _, s := range r.RequiredSkills {
		if s.SkillID == id {
			return s, true
		}
	}
	return RequiredSkill{}, false
}
