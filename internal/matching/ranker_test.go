package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

func rankCandidates() []*profile.Candidate {
	expert := reactCandidate()
	expert.ID = "carol"

	twin := reactCandidate()
	twin.ID = "alice"

	junior := &profile.Candidate{
		ID:                "dave",
		Skills:            []profile.CandidateSkill{{SkillID: "react", Level: taxonomy.Beginner}},
		ExperienceRecords: []profile.ExperienceRecord{{Years: 1}},
	}

	return []*profile.Candidate{junior, expert, twin}
}

func TestRankOrdersByScoreThenID(t *testing.T) {
	r := NewRanker(DefaultConfig(), taxonomy.Default(), zap.NewNop())

	ranking, err := r.Rank(context.Background(), reactSet(), rankCandidates(), refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranking.ComputationID == "" {
		t.Fatalf("expected computation id")
	}
	if ranking.Considered != 3 || len(ranking.Matches) != 3 {
		t.Fatalf("unexpected counts: considered=%d ranked=%d", ranking.Considered, len(ranking.Matches))
	}

	got := []string{ranking.Matches[0].CandidateID, ranking.Matches[1].CandidateID, ranking.Matches[2].CandidateID}
	want := []string{"alice", "carol", "dave"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if ranking.Matches[0].OverallScore != ranking.Matches[1].OverallScore {
		t.Fatalf("expected tied scores for identical profiles")
	}
	if ranking.Matches[1].OverallScore <= ranking.Matches[2].OverallScore {
		t.Fatalf("expected strictly lower score for junior candidate")
	}
}

func TestRankAppliesThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScoreThreshold = 60
	r := NewRanker(cfg, taxonomy.Default(), nil)

	ranking, err := r.Rank(context.Background(), reactSet(), rankCandidates(), refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range ranking.Matches {
		if m.OverallScore < 60 {
			t.Fatalf("candidate %s below threshold leaked into ranking", m.CandidateID)
		}
	}
	if _, ok := ranking.Find("dave"); ok {
		t.Fatalf("expected dave to be filtered out")
	}
}

func TestRankIsolatesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRanker(DefaultConfig(), taxonomy.Default(), zap.New(core))

	score := r.score
	r.score = func(c *profile.Candidate, set *requirements.RequirementSet, now time.Time) CandidateMatch {
		if c.ID == "boom" {
			panic("corrupt profile")
		}
		return score(c, set, now)
	}

	candidates := append(rankCandidates(),
		&profile.Candidate{ID: "boom"},
		&profile.Candidate{ID: "broken", ProfileCompleteness: 300},
	)

	ranking, err := r.Rank(context.Background(), reactSet(), candidates, refTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking.Matches) != 3 {
		t.Fatalf("expected healthy candidates to be ranked, got %d", len(ranking.Matches))
	}
	if len(ranking.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", ranking.Failures)
	}

	failed := map[string]bool{}
	for _, f := range ranking.Failures {
		failed[f.CandidateID] = true
		var cf *ComputationFailure
		if !errors.As(&f, &cf) {
			t.Fatalf("expected ComputationFailure")
		}
	}
	if !failed["boom"] || !failed["broken"] {
		t.Fatalf("unexpected failures: %v", failed)
	}
	if logs.FilterMessage("candidate excluded from ranking").Len() != 2 {
		t.Fatalf("expected a warning per failure, got %d", logs.Len())
	}
}

func TestRankHonoursCancellation(t *testing.T) {
	r := NewRanker(DefaultConfig(), taxonomy.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Rank(ctx, reactSet(), rankCandidates(), refTime); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRankingTop(t *testing.T) {
	r := &Ranking{Matches: []CandidateMatch{{CandidateID: "a"}, {CandidateID: "b"}, {CandidateID: "c"}}}

	if got := r.Top(2); len(got) != 2 || got[1].CandidateID != "b" {
		t.Fatalf("unexpected top: %+v", got)
	}
	if got := r.Top(0); len(got) != 3 {
		t.Fatalf("expected all matches for non-positive n")
	}
}
