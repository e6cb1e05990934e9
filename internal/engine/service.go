package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/ai"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/cache"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/filtering"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/logger"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

const queryPrefix = "query-"

// ErrExtractionUnavailable is returned by MatchQuery when no extractor is configured.
var ErrExtractionUnavailable = errors.New("free-text extraction is not configured")

type Options struct {
	Scoring matching.Config
	Filters filtering.Config
	// DisabledFilters maps filter names to the reason they are switched off.
	DisabledFilters map[string]string
	Extractor       ai.Extractor
	// Clock returns the reference time of a computation. Defaults to time.Now.
	Clock func() time.Time
	// Taxonomy, when set, is asked for the current catalogue before every computation
	// so that reloaded skills take effect. The taxonomy passed to New is the fallback.
	Taxonomy func() *taxonomy.Taxonomy
}

// Service answers match and explain requests on top of the match cache.
type Service struct {
	requirements requirements.Source
	profiles     profile.Source
	coordinator  *cache.Coordinator
	extractor    ai.Extractor

	scoring         matching.Config
	fallback        *taxonomy.Taxonomy
	currentTaxonomy func() *taxonomy.Taxonomy

	filters  filtering.Config
	disabled map[string]string
	clock    func() time.Time
	logger   *zap.Logger

	mu         sync.Mutex
	queries    map[string]*requirements.RequirementSet
	taxonomy   *taxonomy.Taxonomy
	normalizer *requirements.Normalizer
	ranker     *matching.Ranker
}

func New(reqs requirements.Source, profiles profile.Source, tax *taxonomy.Taxonomy, opts Options, log *zap.Logger) (*Service, error) {
	if reqs == nil || profiles == nil {
		return nil, errors.New("requirement and profile sources are required")
	}
	if err := opts.Scoring.Validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	if tax == nil {
		tax = taxonomy.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Service{
		requirements:    reqs,
		profiles:        profiles,
		extractor:       opts.Extractor,
		scoring:         opts.Scoring,
		fallback:        tax,
		currentTaxonomy: opts.Taxonomy,
		filters:         opts.Filters,
		disabled:        opts.DisabledFilters,
		clock:           opts.Clock,
		logger:          log,
		queries:         make(map[string]*requirements.RequirementSet),
	}
	s.coordinator = cache.New(s.compute, log)

	if err := filtering.Validate(&s.filters, s.pipeline()); err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}
	return s, nil
}

// Match returns the ranking of a requirement set at the version currently published
// by the requirement source. Sources keep only the newest draft, so an older requested
// version is answered with the current one; a version that is not published yet is an
// error. A non-positive version means the current one.
func (s *Service) Match(ctx context.Context, key string, version int64) (*matching.Ranking, error) {
	current, err := s.currentVersion(ctx, key)
	if err != nil {
		return nil, err
	}
	if version > current {
		return nil, fmt.Errorf("requirement set %q v%d is not published yet (current v%d)", key, version, current)
	}
	return s.coordinator.GetOrCompute(ctx, key, current)
}

// Explain returns the explained match of one candidate, computing the ranking first
// when it is not cached yet.
func (s *Service) Explain(ctx context.Context, key, candidateID string) (matching.CandidateMatch, error) {
	m, err := s.coordinator.Explain(key, candidateID)
	if !errors.Is(err, cache.ErrNotReady) {
		return m, err
	}

	if _, err := s.Match(ctx, key, 0); err != nil {
		return matching.CandidateMatch{}, err
	}
	return s.coordinator.Explain(key, candidateID)
}

// MatchQuery ranks candidates against a one-off free-text job description.
func (s *Service) MatchQuery(ctx context.Context, text string) (*matching.Ranking, []requirements.SkillResolutionWarning, error) {
	if s.extractor == nil {
		return nil, nil, ErrExtractionUnavailable
	}

	ex, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting requirements: %w", err)
	}

	normalizer, _ := s.toolkit()
	id := queryPrefix + uuid.NewString()
	set, warnings, err := normalizer.FromExtraction(id, text, *ex, 1)
	if err != nil {
		return nil, warnings, err
	}

	s.mu.Lock()
	s.queries[id] = set
	s.mu.Unlock()

	ranking, err := s.coordinator.GetOrCompute(ctx, id, 1)
	return ranking, warnings, err
}

// Refresh recomputes the ranking of a requirement set at its latest known version,
// falling back to Match when nothing was computed for it yet.
func (s *Service) Refresh(ctx context.Context, key string) (*matching.Ranking, error) {
	ranking, err := s.coordinator.Refresh(ctx, key)
	if errors.Is(err, cache.ErrNotReady) {
		return s.Match(ctx, key, 0)
	}
	return ranking, err
}

// Invalidate drops cached results of a requirement set.
func (s *Service) Invalidate(key string) {
	s.coordinator.Invalidate(key)
}

func (s *Service) Snapshot(key string) (cache.Snapshot, bool) {
	return s.coordinator.Snapshot(key)
}

// Reset drops every cached ranking and every stored query.
func (s *Service) Reset() {
	s.mu.Lock()
	s.queries = make(map[string]*requirements.RequirementSet)
	s.mu.Unlock()
	s.coordinator.Reset()
}

func (s *Service) Close() {
	s.coordinator.Close()
}

// Filters reports the configured pre-filter pipeline.
func (s *Service) Filters() []filtering.Status {
	steps := s.pipeline()
	if err := filtering.Validate(&s.filters, steps); err != nil {
		s.logger.Warn("filter configuration is invalid", zap.Error(err))
	}
	return filtering.Describe(steps)
}

func (s *Service) currentVersion(ctx context.Context, key string) (int64, error) {
	if strings.HasPrefix(key, queryPrefix) {
		return 1, nil
	}

	_, version, err := s.requirements.Draft(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("loading requirement set: %w", err)
	}
	return version, nil
}

func (s *Service) compute(ctx context.Context, key string, version int64) (*matching.Ranking, error) {
	log := logger.WithFields(s.logger, logger.MatchFields(key, version)...)
	now := s.clock()

	normalizer, ranker := s.toolkit()
	set, warnings, err := s.requirementSet(ctx, normalizer, key, version)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn("skill not in taxonomy", zap.String("skill", w.Name), zap.String("keyword", w.Keyword))
	}

	candidates, err := s.profiles.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	pool, err := filtering.Run(ctx, &s.filters, filtering.Deps{Logger: log}, s.pipeline(), set, profile.NewPool(candidates))
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	ranking, err := ranker.Rank(ctx, set, pool.Items, now)
	if err != nil {
		return nil, err
	}
	ranking.Considered = len(candidates)
	for _, w := range warnings {
		ranking.Warnings = append(ranking.Warnings, w.String())
	}
	for _, f := range ranking.Failures {
		ranking.Warnings = append(ranking.Warnings, f.Error())
	}
	return ranking, nil
}

// requirementSet resolves the set to rank. A stored query is handed out once; its
// ranking lives on in the cache only.
func (s *Service) requirementSet(ctx context.Context, normalizer *requirements.Normalizer, key string, version int64) (*requirements.RequirementSet, []requirements.SkillResolutionWarning, error) {
	s.mu.Lock()
	query, ok := s.queries[key]
	delete(s.queries, key)
	s.mu.Unlock()
	if ok {
		return query, nil, nil
	}

	draft, current, err := s.requirements.Draft(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("loading requirement set: %w", err)
	}
	if current < version {
		return nil, nil, fmt.Errorf("requirement set %q v%d is not published yet (current v%d)", key, version, current)
	}
	// The ranking is stamped with the version of the content it was computed from.
	return normalizer.Normalize(draft, current)
}

// toolkit returns the normalizer and ranker for the current taxonomy, rebuilding them
// when the taxonomy was replaced.
func (s *Service) toolkit() (*requirements.Normalizer, *matching.Ranker) {
	tax := s.fallback
	if s.currentTaxonomy != nil {
		if current := s.currentTaxonomy(); current != nil {
			tax = current
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tax != s.taxonomy {
		if s.taxonomy != nil {
			s.logger.Info("taxonomy changed", zap.Int("skills", tax.Len()))
		}
		s.taxonomy = tax
		s.normalizer = requirements.NewNormalizer(tax, s.scoring.KeywordWeightFactor)
		s.ranker = matching.NewRanker(s.scoring, tax, s.logger)
	}
	return s.normalizer, s.ranker
}

// pipeline builds a fresh filter chain; filters keep per-run state.
func (s *Service) pipeline() []filtering.Filter {
	steps := filtering.Default()
	for name, reason := range s.disabled {
		filtering.DisableByName(steps, name, reason)
	}
	return steps
}
