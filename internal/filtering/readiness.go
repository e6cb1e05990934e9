package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
)

type readinessFilter struct {
	disabled bool
	reason   string
	applied  bool
}

// NewReadiness creates a filter that keeps only rotation-ready candidates when the
// requirement set demands it.
func NewReadiness() Filter {
	return &readinessFilter{}
}

func (f *readinessFilter) Name() string { return "readiness" }

func (f *readinessFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *readinessFilter) IsEnabled() bool { return !f.disabled }

func (f *readinessFilter) Validate(*Config) error { return nil }

func (f *readinessFilter) Apply(_ context.Context, deps Deps, set *requirements.RequirementSet, pool *profile.Pool) (*profile.Pool, Step, error) {
	initial := pool.Len()
	f.applied = set.RequiresReadiness()
	if !f.applied {
		return pool, Step{Initial: initial, Dropped: 0, Left: pool.Len()}, nil
	}

	excluded := pool.ExcludeFunc(func(c *profile.Candidate) bool {
		return !c.ReadinessForRotation
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates not ready for rotation",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", pool.Len()),
		)
	}

	return pool, Step{Initial: initial, Dropped: len(excluded), Left: pool.Len()}, nil
}

func (f *readinessFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"readiness_required": strconv.FormatBool(f.applied)},
	}
}
