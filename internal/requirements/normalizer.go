package requirements

import (
	"fmt"
	"strings"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

const (
	DefaultWeight              = 0.5
	DefaultKeywordWeight       = 0.3
	DefaultKeywordWeightFactor = 0.5
)

var seniorityExperience = map[string]ExperienceRange{
	"junior": {Min: 0, Max: 2},
	"middle": {Min: 2, Max: 5},
	"senior": {Min: 5, Max: 10},
	"lead":   {Min: 7, Max: 15},
}

// Normalizer turns drafts into canonical requirement sets.
type Normalizer struct {
	taxonomy            *taxonomy.Taxonomy
	keywordWeightFactor float64
}

// NewNormalizer creates a normalizer. A factor outside (0,1] falls back to the default.
func NewNormalizer(tax *taxonomy.Taxonomy, keywordWeightFactor float64) *Normalizer {
	if keywordWeightFactor <= 0 || keywordWeightFactor > 1 {
		keywordWeightFactor = DefaultKeywordWeightFactor
	}
	return &Normalizer{taxonomy: tax, keywordWeightFactor: keywordWeightFactor}
}

// Normalize validates the draft, resolves skill names, deduplicates requirements and
// stamps the result with version. Unresolved names are kept as keyword requirements
// and reported as warnings.
func (n *Normalizer) Normalize(d Draft, version int64) (*RequirementSet, []SkillResolutionWarning, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return nil, nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if version < 1 {
		return nil, nil, &ValidationError{ID: id, Field: "version", Reason: fmt.Sprintf("must be positive, got %d", version)}
	}

	exp, err := n.experience(id, d)
	if err != nil {
		return nil, nil, err
	}

	set := &RequirementSet{
		ID:                id,
		Version:           version,
		Title:             strings.TrimSpace(d.Title),
		ExperienceYears:   exp,
		Department:        strings.TrimSpace(d.Department),
		Level:             strings.ToLower(strings.TrimSpace(d.Level)),
		ReadinessRequired: d.ReadinessRequired,
		SourceText:        d.SourceText,
	}

	var warnings []SkillResolutionWarning
	index := make(map[string]int)

	add := func(rs RequiredSkill) {
		if pos, ok := index[rs.SkillID]; ok {
			set.RequiredSkills[pos] = merge(set.RequiredSkills[pos], rs)
			return
		}
		index[rs.SkillID] = len(set.RequiredSkills)
		set.RequiredSkills = append(set.RequiredSkills, rs)
	}

	for i, ds := range d.Skills {
		name := strings.TrimSpace(ds.SkillID)
		if name == "" {
			name = strings.TrimSpace(ds.Name)
		}
		if name == "" {
			return nil, nil, &ValidationError{ID: id, Field: fmt.Sprintf("skills[%d]", i), Reason: "skill id or name is required"}
		}

		level := ds.Level
		if level == taxonomy.LevelUnknown {
			level = taxonomy.Intermediate
		}
		if !level.Valid() {
			return nil, nil, &ValidationError{ID: id, Field: fmt.Sprintf("skills[%d].level", i), Reason: fmt.Sprintf("unknown level %d", ds.Level)}
		}

		weight := DefaultWeight
		if ds.Weight != nil {
			weight = *ds.Weight
		}
		if weight < 0 || weight > 1 {
			return nil, nil, &ValidationError{ID: id, Field: fmt.Sprintf("skills[%d].weight", i), Reason: fmt.Sprintf("%.3f is outside [0,1]", weight)}
		}

		required := true
		if ds.Required != nil {
			required = *ds.Required
		}

		rs, warning := n.resolve(ds.SkillID, name)
		rs.Level = level
		rs.Weight = weight
		rs.IsCritical = ds.Critical
		rs.Required = required || ds.Critical
		if rs.Keyword {
			rs.Weight = weight * n.keywordWeightFactor
			warnings = append(warnings, *warning)
		}
		add(rs)
	}

	for _, kw := range d.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		rs, warning := n.resolve("", kw)
		rs.Level = taxonomy.Beginner
		rs.Weight = DefaultKeywordWeight
		if rs.Keyword {
			rs.Weight = DefaultKeywordWeight * n.keywordWeightFactor
			warnings = append(warnings, *warning)
		}
		add(rs)
	}

	if len(set.RequiredSkills) == 0 {
		return nil, warnings, &ValidationError{ID: id, Field: "skills", Reason: "no skills or keywords to score against"}
	}

	return set, warnings, nil
}

// FromExtraction normalizes the structured output of a free-text extraction.
func (n *Normalizer) FromExtraction(id, text string, ex Extraction, version int64) (*RequirementSet, []SkillResolutionWarning, error) {
	return n.Normalize(ex.Draft(id, text), version)
}

func (n *Normalizer) experience(id string, d Draft) (ExperienceRange, error) {
	exp := d.ExperienceYears
	if exp.Min < 0 || exp.Max < 0 {
		return exp, &ValidationError{ID: id, Field: "experience_years", Reason: "bounds must not be negative"}
	}
	if exp.Max > 0 && exp.Min > exp.Max {
		return exp, &ValidationError{ID: id, Field: "experience_years", Reason: fmt.Sprintf("min %.1f is greater than max %.1f", exp.Min, exp.Max)}
	}
	if exp.Min == 0 && exp.Max == 0 {
		if def, ok := seniorityExperience[strings.ToLower(strings.TrimSpace(d.Level))]; ok {
			exp = def
		}
	}
	return exp, nil
}

func (n *Normalizer) resolve(skillID, name string) (RequiredSkill, *SkillResolutionWarning) {
	if skillID != "" {
		if s, ok := n.taxonomy.Get(n.taxonomy.Canonical(skillID)); ok {
			return fromSkill(s), nil
		}
	}
	if id, ok := n.taxonomy.Resolve(name); ok {
		s, _ := n.taxonomy.Get(id)
		return fromSkill(s), nil
	}

	keyword := taxonomy.Normalize(name)
	return RequiredSkill{
		SkillID: keyword,
		Name:    strings.TrimSpace(name),
		Keyword: true,
	}, &SkillResolutionWarning{Name: name, Keyword: keyword}
}

func fromSkill(s taxonomy.Skill) RequiredSkill {
	return RequiredSkill{SkillID: s.ID, Name: s.Name, Category: s.Category}
}

// merge keeps the higher weight and the stricter level of two requirements on one skill.
func merge(a, b RequiredSkill) RequiredSkill {
	if b.Weight > a.Weight {
		a.Weight = b.Weight
	}
	a.Level = taxonomy.Stricter(a.Level, b.Level)
	a.IsCritical = a.IsCritical || b.IsCritical
	a.Required = a.Required || b.Required
	a.Keyword = a.Keyword && b.Keyword
	return a
}
