package taxonomy

import (
	"fmt"
	"strings"
)

// ProficiencyLevel is an ordinal skill level. Only the ordering is meaningful.
type ProficiencyLevel int

const (
	LevelUnknown ProficiencyLevel = iota
	Beginner
	Intermediate
	Advanced
	Expert
)

// MaxOrdinalSpan is the gap reported for a skill the candidate does not hold.
const MaxOrdinalSpan = 4

var levelNames = map[ProficiencyLevel]string{
	Beginner:     "beginner",
	Intermediate: "intermediate",
	Advanced:     "advanced",
	Expert:       "expert",
}

var levelAliases = map[string]ProficiencyLevel{
	"beginner":     Beginner,
	"novice":       Beginner,
	"basic":        Beginner,
	"junior":       Beginner,
	"intermediate": Intermediate,
	"middle":       Intermediate,
	"proficient":   Intermediate,
	"advanced":     Advanced,
	"senior":       Advanced,
	"expert":       Expert,
	"lead":         Expert,
	"master":       Expert,
}

// ParseLevel converts a textual or numeric level into a ProficiencyLevel.
func ParseLevel(s string) (ProficiencyLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return LevelUnknown, nil
	}
	if lvl, ok := levelAliases[key]; ok {
		return lvl, nil
	}
	switch key {
	case "1", "2", "3", "4":
		return ProficiencyLevel(key[0] - '0'), nil
	}
	return LevelUnknown, fmt.Errorf("unknown proficiency level %q", s)
}

// Ordinal returns the numeric rank of the level (1..4, 0 when unknown).
func (l ProficiencyLevel) Ordinal() int {
	if !l.Valid() {
		return 0
	}
	return int(l)
}

// Valid reports whether the level is one of the four known levels.
func (l ProficiencyLevel) Valid() bool {
	return l >= Beginner && l <= Expert
}

func (l ProficiencyLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

func (l ProficiencyLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *ProficiencyLevel) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Stricter returns the higher of two levels.
func Stricter(a, b ProficiencyLevel) ProficiencyLevel {
	if b > a {
		return b
	}
	return a
}
