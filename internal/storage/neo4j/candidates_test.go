package neo4j

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

func TestDecodeCandidate(t *testing.T) {
	t.Parallel()

	lastUsed := time.Date(2024, time.November, 3, 10, 0, 0, 0, time.UTC)

	props := map[string]any{
		"id":                     "alice",
		"name":                   "Alice",
		"department":             "web",
		"profile_completeness":   int64(90),
		"readiness_for_rotation": true,
		"career_goals":           []any{"frontend", "lead"},
		"last_active_at":         "2025-02-20T09:00:00Z",
		"unknown_property":       "ignored",
	}
	skills := []any{
		map[string]any{
			"skill_id":            "react",
			"name":                "React",
			"level":               "expert",
			"endorsements":        int64(3),
			"years_of_experience": int64(4),
			"last_used_at":        lastUsed,
			"updated_at":          nil,
		},
		map[string]any{
			"skill_id":     "typescript",
			"level":        int64(2),
			"last_used_at": neo4j.LocalDateTime(lastUsed),
		},
	}
	experience := []any{
		map[string]any{"title": "Frontend engineer", "company": "Acme", "years": 3.5, "internal": true},
		map[string]any{"title": "Intern", "years": int64(1)},
	}

	c, err := decodeCandidate(props, skills, experience)
	if err != nil {
		t.Fatalf("decodeCandidate() error = %v", err)
	}

	if c.ID != "alice" || c.ProfileCompleteness != 90 || !c.ReadinessForRotation || len(c.CareerGoals) != 2 {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if c.LastActiveAt == nil || !c.LastActiveAt.Equal(time.Date(2025, time.February, 20, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last active: %v", c.LastActiveAt)
	}

	if len(c.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(c.Skills))
	}
	react := c.Skills[0]
	if react.Level != taxonomy.Expert || react.Endorsements != 3 || react.YearsOfExperience != 4 {
		t.Fatalf("unexpected react skill: %+v", react)
	}
	if react.LastUsedAt == nil || !react.LastUsedAt.Equal(lastUsed) || react.UpdatedAt != nil {
		t.Fatalf("unexpected react timestamps: %+v", react)
	}
	ts := c.Skills[1]
	if ts.Level != taxonomy.Intermediate || ts.LastUsedAt == nil || !ts.LastUsedAt.Equal(lastUsed) {
		t.Fatalf("unexpected typescript skill: %+v", ts)
	}

	if got := c.TotalExperience(); got != 4.5 {
		t.Fatalf("expected 4.5 years, got %v", got)
	}
	if !c.ExperienceRecords[0].Internal {
		t.Fatalf("expected internal experience record")
	}
}

func TestDecodeCandidateRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		props  map[string]any
		skills any
	}{
		{name: "missing id", props: map[string]any{"name": "Nobody"}},
		{name: "completeness out of range", props: map[string]any{"id": "x", "profile_completeness": int64(140)}},
		{
			name:   "unknown level",
			props:  map[string]any{"id": "x"},
			skills: []any{map[string]any{"skill_id": "go", "level": "wizard"}},
		},
		{
			name:   "missing level",
			props:  map[string]any{"id": "x"},
			skills: []any{map[string]any{"skill_id": "go"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := decodeCandidate(tt.props, tt.skills, nil); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
