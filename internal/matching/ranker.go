package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

const defaultWorkers = 8

// Ranker scores a candidate pool in parallel and orders the results.
type Ranker struct {
	cfg    Config
	logger *zap.Logger
	score  func(*profile.Candidate, *requirements.RequirementSet, time.Time) CandidateMatch
}

func NewRanker(cfg Config, tax *taxonomy.Taxonomy, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{
		cfg:    cfg,
		logger: logger,
		score:  NewScorer(cfg, tax).Score,
	}
}

type outcome struct {
	match   *CandidateMatch
	failure *ComputationFailure
}

// Rank scores every candidate against set. Candidates that fail validation or panic
// while scoring are reported in Failures and excluded from Matches.
func (r *Ranker) Rank(ctx context.Context, set *requirements.RequirementSet, candidates []*profile.Candidate, now time.Time) (*Ranking, error) {
	if set == nil {
		return nil, fmt.Errorf("requirement set is nil")
	}

	ranking := &Ranking{
		ComputationID:    uuid.NewString(),
		RequirementSetID: set.ID,
		Version:          set.Version,
		Title:            set.Title,
		ReferenceTime:    now,
		Considered:       len(candidates),
		Matches:          []CandidateMatch{},
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.scoreOne(c, set, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking %q v%d: %w", set.ID, set.Version, err)
	}

	for _, res := range results {
		if res.failure != nil {
			ranking.Failures = append(ranking.Failures, *res.failure)
			r.logger.Warn("candidate excluded from ranking",
				zap.String("requirement_set", set.ID),
				zap.String("candidate_id", res.failure.CandidateID),
				zap.Error(res.failure.Err),
			)
			continue
		}
		if res.match.OverallScore < r.cfg.MinScoreThreshold {
			continue
		}
		ranking.Matches = append(ranking.Matches, *res.match)
	}
	SortMatches(ranking.Matches)

	r.logger.Info("ranking computed",
		zap.String("computation_id", ranking.ComputationID),
		zap.String("requirement_set", set.ID),
		zap.Int64("version", set.Version),
		zap.Int("considered", ranking.Considered),
		zap.Int("ranked", len(ranking.Matches)),
		zap.Int("failed", len(ranking.Failures)),
	)

	return ranking, nil
}

func (r *Ranker) scoreOne(c *profile.Candidate, set *requirements.RequirementSet, now time.Time) (out outcome) {
	id := ""
	if c != nil {
		id = c.ID
	}

	defer func() {
		if p := recover(); p != nil {
			out = outcome{failure: &ComputationFailure{CandidateID: id, Err: fmt.Errorf("panic: %v", p)}}
		}
	}()

	if err := c.Validate(); err != nil {
		return outcome{failure: &ComputationFailure{CandidateID: id, Err: err}}
	}

	m := r.score(c, set, now)
	return outcome{match: &m}
}

// SortMatches orders matches by score descending, then candidate id ascending.
func SortMatches(matches []CandidateMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
}
