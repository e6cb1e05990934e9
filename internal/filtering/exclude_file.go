package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates contained in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, _ *requirements.RequirementSet, pool *profile.Pool) (*profile.Pool, Step, error) {
	initial := pool.Len()
	if f.path == "" {
		return pool, Step{Initial: initial, Dropped: 0, Left: pool.Len()}, nil
	}

	excluded, err := profile.GetExcludedCandidatesFromFile(f.path)
	if err != nil {
		return pool, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	removed := pool.Exclude(excluded.CandidateIDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", pool.Len()),
		)
	}

	return pool, Step{Initial: initial, Dropped: len(removed), Left: pool.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
