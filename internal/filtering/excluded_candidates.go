package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

type excludedCandidatesFilter struct {
	ids []string
}

// NewExcludedCandidates creates a filter that removes candidates listed in the config.
func NewExcludedCandidates() Filter {
	return &excludedCandidatesFilter{}
}

func (f *excludedCandidatesFilter) Name() string { return "excluded_candidates" }

func (f *excludedCandidatesFilter) Disable(string) {}

func (f *excludedCandidatesFilter) IsEnabled() bool { return true }

func (f *excludedCandidatesFilter) Validate(cfg *Config) error {
	f.ids = nil
	if cfg == nil {
		return nil
	}
	for _, id := range cfg.ExcludeCandidates {
		if id = strings.TrimSpace(id); id != "" {
			f.ids = append(f.ids, id)
		}
	}
	return nil
}

func (f *excludedCandidatesFilter) Apply(_ context.Context, deps Deps, _ *requirements.RequirementSet, pool *profile.Pool) (*profile.Pool, Step, error) {
	initial := pool.Len()
	if len(f.ids) == 0 {
		return pool, Step{Initial: initial, Dropped: 0, Left: pool.Len()}, nil
	}

	excluded := pool.Exclude(f.ids)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by configuration",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", pool.Len()),
		)
	}

	return pool, Step{Initial: initial, Dropped: len(excluded), Left: pool.Len()}, nil
}

func (f *excludedCandidatesFilter) Status() Status {
	details := map[string]string{}
	if len(f.ids) > 0 {
		details["candidates"] = strings.Join(f.ids, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
