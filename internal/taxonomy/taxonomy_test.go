package taxonomy

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tax := Default()

	tests := []struct {
		name   string
		input  string
		expect string
		ok     bool
	}{
		{name: "exact id", input: "react", expect: "react", ok: true},
		{name: "display name case insensitive", input: "PostgreSQL", expect: "postgresql", ok: true},
		{name: "synonym", input: "k8s", expect: "kubernetes", ok: true},
		{name: "synonym with spaces", input: "  Golang ", expect: "go", ok: true},
		{name: "substring tolerant", input: "React.js developer", expect: "react", ok: true},
		{name: "word boundaries respected", input: "django", expect: "", ok: false},
		{name: "unknown", input: "cobol", expect: "", ok: false},
		{name: "empty", input: "  ", expect: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tax.Resolve(tt.input)
			if ok != tt.ok || got != tt.expect {
				t.Fatalf("Resolve(%q) = (%q, %v), expected (%q, %v)", tt.input, got, ok, tt.expect, tt.ok)
			}
		})
	}
}

func TestNewMakesRelationsSymmetric(t *testing.T) {
	tax, err := New([]Skill{
		{ID: "a", RelatedSkillIDs: []string{"b", "missing"}},
		{ID: "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !tax.Related("a", "b") || !tax.Related("b", "a") {
		t.Fatalf("expected symmetric relation between a and b")
	}

	a, _ := tax.Get("a")
	if len(a.RelatedSkillIDs) != 1 {
		t.Fatalf("expected unknown relation to be dropped, got %v", a.RelatedSkillIDs)
	}
}

func TestNewRejectsConflictingSynonyms(t *testing.T) {
	_, err := New([]Skill{
		{ID: "a", Aliases: []string{"x"}},
		{ID: "b", Aliases: []string{"X"}},
	})
	if err == nil {
		t.Fatal("expected error for synonym shared by two skills")
	}
}

func TestCanonical(t *testing.T) {
	tax := Default()
	if got := tax.Canonical("ReactJS"); got != "react" {
		t.Fatalf("expected react, got %q", got)
	}
	if got := tax.Canonical("Unknown Skill"); got != "unknown skill" {
		t.Fatalf("expected normalized passthrough, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect ProficiencyLevel
		err    bool
	}{
		{input: "beginner", expect: Beginner},
		{input: "Senior", expect: Advanced},
		{input: "4", expect: Expert},
		{input: "", expect: LevelUnknown},
		{input: "guru", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.input)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(Beginner < Intermediate && Intermediate < Advanced && Advanced < Expert) {
		t.Fatal("levels must be strictly ordered")
	}
	if Expert.Ordinal()-Beginner.Ordinal() >= MaxOrdinalSpan {
		t.Fatal("held-skill gaps must stay below the absent-skill span")
	}
	if Stricter(Intermediate, Expert) != Expert {
		t.Fatal("expected stricter level to win")
	}
}
