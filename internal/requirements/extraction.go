package requirements

import (
	"strings"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// Extraction is the structured output of a free-text requirement extractor.
type Extraction struct {
	Title      string           `json:"title,omitempty" mapstructure:"title"`
	Skills     []ExtractedSkill `json:"skills" mapstructure:"skills"`
	Keywords   []string         `json:"keywords,omitempty" mapstructure:"keywords"`
	Experience ExperienceRange  `json:"experience" mapstructure:"experience"`
	Department string           `json:"department,omitempty" mapstructure:"department"`
	Level      string           `json:"level,omitempty" mapstructure:"level"`
}

type ExtractedSkill struct {
	Name     string  `json:"name" mapstructure:"name"`
	Level    string  `json:"level,omitempty" mapstructure:"level"`
	Weight   float64 `json:"weight,omitempty" mapstructure:"weight"`
	Required *bool   `json:"required,omitempty" mapstructure:"required"`
	Critical bool    `json:"critical,omitempty" mapstructure:"critical"`
}

// Draft converts the extraction into a draft. Unknown level words fall back to
// intermediate since extractor output is advisory.
func (e Extraction) Draft(id, text string) Draft {
	d := Draft{
		ID:              id,
		Title:           e.Title,
		Keywords:        e.Keywords,
		ExperienceYears: e.Experience,
		Department:      e.Department,
		Level:           e.Level,
		SourceText:      text,
	}
	for _, s := range e.Skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		level, err := taxonomy.ParseLevel(s.Level)
		if err != nil {
			level = taxonomy.Intermediate
		}
		ds := DraftSkill{
			Name:     name,
			Level:    level,
			Critical: s.Critical,
			Required: s.Required,
		}
		// Extractors omit the weight rather than sending zero.
		if s.Weight > 0 {
			w := s.Weight
			ds.Weight = &w
		}
		d.Skills = append(d.Skills, ds)
	}
	return d
}
