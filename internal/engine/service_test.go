package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/cache"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/filtering"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

var refTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type memRequirements struct {
	mu       sync.Mutex
	drafts   map[string]requirements.Draft
	versions map[string]int64
}

func newMemRequirements(drafts ...requirements.Draft) *memRequirements {
	m := &memRequirements{drafts: map[string]requirements.Draft{}, versions: map[string]int64{}}
	for _, d := range drafts {
		m.publish(d)
	}
	return m
}

func (m *memRequirements) publish(d requirements.Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.ID] = d
	m.versions[d.ID]++
}

func (m *memRequirements) Draft(_ context.Context, id string) (requirements.Draft, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return requirements.Draft{}, 0, requirements.ErrNotFound
	}
	return d, m.versions[id], nil
}

func weightPtr(v float64) *float64 { return &v }

type memProfiles struct {
	candidates []*profile.Candidate
	calls      atomic.Int32
}

func (m *memProfiles) Candidates(context.Context) ([]*profile.Candidate, error) {
	m.calls.Add(1)
	out := make([]*profile.Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

type stubExtractor struct {
	ex  *requirements.Extraction
	err error
}

func (s stubExtractor) Extract(context.Context, string) (*requirements.Extraction, error) {
	return s.ex, s.err
}

func frontendDraft() requirements.Draft {
	return requirements.Draft{
		ID:              "frontend",
		Title:           "Frontend developer",
		Skills:          []requirements.DraftSkill{{Name: "React", Level: taxonomy.Advanced, Weight: weightPtr(1), Critical: true}},
		ExperienceYears: requirements.ExperienceRange{Min: 3, Max: 8},
		Department:      "web",
	}
}

func testCandidates() []*profile.Candidate {
	return []*profile.Candidate{
		{
			ID:                   "bob",
			Skills:               []profile.CandidateSkill{{SkillID: "python", Level: taxonomy.Expert}},
			ExperienceRecords:    []profile.ExperienceRecord{{Years: 4}},
			ProfileCompleteness:  80,
			ReadinessForRotation: false,
		},
		{
			ID:                   "alice",
			Department:           "web",
			Skills:               []profile.CandidateSkill{{SkillID: "react", Level: taxonomy.Expert}},
			ExperienceRecords:    []profile.ExperienceRecord{{Years: 5}},
			ProfileCompleteness:  90,
			ReadinessForRotation: true,
		},
	}
}

func newTestService(t *testing.T, reqs requirements.Source, profiles profile.Source, mutate func(*Options)) *Service {
	t.Helper()
	opts := Options{
		Scoring: matching.DefaultConfig(),
		Clock:   func() time.Time { return refTime },
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(reqs, profiles, taxonomy.Default(), opts, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestServiceMatchRanksAndCaches(t *testing.T) {
	t.Parallel()

	profiles := &memProfiles{candidates: testCandidates()}
	s := newTestService(t, newMemRequirements(frontendDraft()), profiles, nil)

	ranking, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if ranking.Version != 1 || ranking.Considered != 2 {
		t.Fatalf("unexpected ranking header: version=%d considered=%d", ranking.Version, ranking.Considered)
	}
	if len(ranking.Matches) != 2 || ranking.Matches[0].CandidateID != "alice" {
		t.Fatalf("expected alice first, got %+v", ranking.Matches)
	}
	if !ranking.ReferenceTime.Equal(refTime) {
		t.Fatalf("expected reference time %s, got %s", refTime, ranking.ReferenceTime)
	}

	again, err := s.Match(context.Background(), "frontend", 1)
	if err != nil {
		t.Fatalf("second Match() error = %v", err)
	}
	if again != ranking {
		t.Fatalf("expected the cached ranking to be served")
	}
	if got := profiles.calls.Load(); got != 1 {
		t.Fatalf("expected a single computation, got %d", got)
	}
}

func TestServiceMatchFollowsPublishedVersion(t *testing.T) {
	t.Parallel()

	reqs := newMemRequirements(frontendDraft())
	profiles := &memProfiles{candidates: testCandidates()}
	s := newTestService(t, reqs, profiles, nil)

	if _, err := s.Match(context.Background(), "frontend", 0); err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	updated := frontendDraft()
	updated.Skills = []requirements.DraftSkill{{Name: "Python", Level: taxonomy.Advanced, Weight: weightPtr(1)}}
	reqs.publish(updated)

	ranking, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if ranking.Version != 2 {
		t.Fatalf("expected version 2, got %d", ranking.Version)
	}
	if ranking.Matches[0].CandidateID != "bob" {
		t.Fatalf("expected bob to lead after the update, got %s", ranking.Matches[0].CandidateID)
	}

	if _, err := s.Match(context.Background(), "frontend", 7); err == nil {
		t.Fatalf("expected error for an unpublished version")
	}
}

func TestServiceMatchStampsComputedContent(t *testing.T) {
	t.Parallel()

	reqs := newMemRequirements(frontendDraft())
	s := newTestService(t, reqs, &memProfiles{candidates: testCandidates()}, nil)

	first, err := s.Match(context.Background(), "frontend", 1)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	updated := frontendDraft()
	updated.Skills = []requirements.DraftSkill{{Name: "Python", Level: taxonomy.Advanced, Weight: weightPtr(1)}}
	reqs.publish(updated)
	s.Invalidate("frontend")

	second, err := s.Match(context.Background(), "frontend", 1)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	if second.Version != 2 {
		t.Fatalf("expected the ranking of the published v2, got v%d", second.Version)
	}
	if second.Matches[0].CandidateID != "bob" || first.Matches[0].CandidateID != "alice" {
		t.Fatalf("unexpected leaders: v1=%s v2=%s", first.Matches[0].CandidateID, second.Matches[0].CandidateID)
	}

	snap, ok := s.Snapshot("frontend")
	if !ok || snap.Version != 2 || snap.Result != second {
		t.Fatalf("expected the cache to hold v2, got %+v", snap)
	}
}

func TestServiceMatchUnknownSet(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newMemRequirements(), &memProfiles{}, nil)

	if _, err := s.Match(context.Background(), "missing", 0); !errors.Is(err, requirements.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Match(context.Background(), "missing", 3); !errors.Is(err, requirements.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestServiceAppliesFilters(t *testing.T) {
	t.Parallel()

	draft := frontendDraft()
	ready := true
	draft.ReadinessRequired = &ready

	tests := []struct {
		name   string
		mutate func(*Options)
		want   []string
	}{
		{name: "readiness", want: []string{"alice"}},
		{
			name: "readiness disabled",
			mutate: func(o *Options) {
				o.DisabledFilters = map[string]string{"readiness": "manual review"}
			},
			want: []string{"alice", "bob"},
		},
		{
			name: "excluded candidate",
			mutate: func(o *Options) {
				o.DisabledFilters = map[string]string{"readiness": "manual review"}
				o.Filters = filtering.Config{ExcludeCandidates: []string{"alice"}}
			},
			want: []string{"bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestService(t, newMemRequirements(draft), &memProfiles{candidates: testCandidates()}, tt.mutate)
			ranking, err := s.Match(context.Background(), "frontend", 0)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}

			var got []string
			for _, m := range ranking.Matches {
				got = append(got, m.CandidateID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if ranking.Considered != 2 {
				t.Fatalf("expected the whole pool to be considered, got %d", ranking.Considered)
			}
		})
	}
}

func TestServiceExplain(t *testing.T) {
	t.Parallel()

	s := newTestService(t, newMemRequirements(frontendDraft()), &memProfiles{candidates: testCandidates()}, nil)

	m, err := s.Explain(context.Background(), "frontend", "alice")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if m.CandidateID != "alice" || len(m.Explanation.Strengths) == 0 {
		t.Fatalf("unexpected explanation: %+v", m)
	}

	if _, err := s.Explain(context.Background(), "frontend", "nobody"); !errors.Is(err, cache.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}

	if snap, ok := s.Snapshot("frontend"); !ok || snap.State != cache.StateReady {
		t.Fatalf("expected a ready entry, got %+v", snap)
	}
}

func TestServiceInvalidateRecomputes(t *testing.T) {
	t.Parallel()

	profiles := &memProfiles{candidates: testCandidates()}
	s := newTestService(t, newMemRequirements(frontendDraft()), profiles, nil)

	first, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	s.Invalidate("frontend")

	second, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if first.ComputationID == second.ComputationID {
		t.Fatalf("expected a new computation after invalidation")
	}
	if got := profiles.calls.Load(); got != 2 {
		t.Fatalf("expected 2 computations, got %d", got)
	}
}

func TestServiceRefresh(t *testing.T) {
	t.Parallel()

	profiles := &memProfiles{candidates: testCandidates()}
	s := newTestService(t, newMemRequirements(frontendDraft()), profiles, nil)

	first, err := s.Refresh(context.Background(), "frontend")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	second, err := s.Refresh(context.Background(), "frontend")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if first.ComputationID == second.ComputationID || first.Version != second.Version {
		t.Fatalf("expected a recomputation of version %d, got %d", first.Version, second.Version)
	}
	if got := profiles.calls.Load(); got != 2 {
		t.Fatalf("expected 2 computations, got %d", got)
	}
}

func TestServiceWarnsAboutUnknownSkills(t *testing.T) {
	t.Parallel()

	draft := frontendDraft()
	draft.Skills = append(draft.Skills, requirements.DraftSkill{Name: "Figma", Weight: weightPtr(0.4)})

	s := newTestService(t, newMemRequirements(draft), &memProfiles{candidates: testCandidates()}, nil)

	ranking, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(ranking.Warnings) != 1 || !strings.Contains(strings.ToLower(ranking.Warnings[0]), "figma") {
		t.Fatalf("expected a figma warning, got %v", ranking.Warnings)
	}
}

func TestServiceMatchQuery(t *testing.T) {
	t.Parallel()

	t.Run("no extractor", func(t *testing.T) {
		t.Parallel()

		s := newTestService(t, newMemRequirements(), &memProfiles{candidates: testCandidates()}, nil)
		if _, _, err := s.MatchQuery(context.Background(), "react dev"); !errors.Is(err, ErrExtractionUnavailable) {
			t.Fatalf("expected ErrExtractionUnavailable, got %v", err)
		}
	})

	t.Run("extraction error", func(t *testing.T) {
		t.Parallel()

		s := newTestService(t, newMemRequirements(), &memProfiles{}, func(o *Options) {
			o.Extractor = stubExtractor{err: errors.New("quota")}
		})
		if _, _, err := s.MatchQuery(context.Background(), "react dev"); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("ranks extracted requirements", func(t *testing.T) {
		t.Parallel()

		ex := &requirements.Extraction{
			Title: "React engineer",
			Skills: []requirements.ExtractedSkill{
				{Name: "reactjs", Level: "senior", Weight: 1},
				{Name: "Storybook", Level: "middle", Weight: 0.5},
			},
			Experience: requirements.ExperienceRange{Min: 2},
		}
		profiles := &memProfiles{candidates: testCandidates()}
		s := newTestService(t, newMemRequirements(), profiles, func(o *Options) {
			o.Extractor = stubExtractor{ex: ex}
		})

		ranking, warnings, err := s.MatchQuery(context.Background(), "We need a senior React engineer")
		if err != nil {
			t.Fatalf("MatchQuery() error = %v", err)
		}
		if !strings.HasPrefix(ranking.RequirementSetID, "query-") || ranking.Version != 1 {
			t.Fatalf("unexpected query ranking id %q v%d", ranking.RequirementSetID, ranking.Version)
		}
		if len(warnings) != 1 || warnings[0].Name != "Storybook" {
			t.Fatalf("expected storybook warning, got %+v", warnings)
		}
		if ranking.Matches[0].CandidateID != "alice" {
			t.Fatalf("expected alice first, got %s", ranking.Matches[0].CandidateID)
		}

		s.mu.Lock()
		stored := len(s.queries)
		s.mu.Unlock()
		if stored != 0 {
			t.Fatalf("expected the query set to be released once ranked, %d left", stored)
		}

		cached, err := s.Match(context.Background(), ranking.RequirementSetID, 0)
		if err != nil {
			t.Fatalf("Match() on query id error = %v", err)
		}
		if cached != ranking || profiles.calls.Load() != 1 {
			t.Fatalf("expected the query ranking to be cached")
		}

		s.Reset()
		if _, err := s.Match(context.Background(), ranking.RequirementSetID, 0); !errors.Is(err, requirements.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after reset, got %v", err)
		}
	})
}

func TestServiceFollowsTaxonomyChanges(t *testing.T) {
	t.Parallel()

	draft := frontendDraft()
	draft.Skills = append(draft.Skills, requirements.DraftSkill{Name: "Figma", Weight: weightPtr(0.4)})

	withFigma, err := taxonomy.New(append(taxonomy.Default().Skills(), taxonomy.Skill{ID: "figma", Name: "Figma", Category: "design"}))
	if err != nil {
		t.Fatalf("taxonomy.New() error = %v", err)
	}

	var current atomic.Pointer[taxonomy.Taxonomy]
	current.Store(taxonomy.Default())

	s := newTestService(t, newMemRequirements(draft), &memProfiles{candidates: testCandidates()}, func(o *Options) {
		o.Taxonomy = current.Load
	})

	before, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(before.Warnings) != 1 {
		t.Fatalf("expected figma to be unknown at first, got %v", before.Warnings)
	}

	current.Store(withFigma)
	s.Invalidate("frontend")

	after, err := s.Match(context.Background(), "frontend", 0)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(after.Warnings) != 0 {
		t.Fatalf("expected figma to resolve after the taxonomy change, got %v", after.Warnings)
	}
	var figma *matching.SkillMatch
	for i, m := range after.Matches[0].SkillMatches {
		if m.SkillID == "figma" {
			figma = &after.Matches[0].SkillMatches[i]
		}
	}
	if figma == nil || figma.Keyword || figma.Category != "design" {
		t.Fatalf("expected figma as a catalogue skill, got %+v", after.Matches[0].SkillMatches)
	}
}

func TestNewRejectsInvalidScoring(t *testing.T) {
	t.Parallel()

	cfg := matching.DefaultConfig()
	cfg.Weights.Skills = 0.9

	if _, err := New(newMemRequirements(), &memProfiles{}, nil, Options{Scoring: cfg}, nil); err == nil {
		t.Fatalf("expected error for weights not summing to one")
	}
}
