package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/matching"
)

var (
	ErrNotReady          = errors.New("match results are not ready")
	ErrCandidateNotFound = errors.New("candidate not found in match results")
)

type State int

const (
	StateEmpty State = iota
	StateComputing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	default:
		return "empty"
	}
}

// ComputeFunc produces the ranking of a requirement set at a version.
type ComputeFunc func(ctx context.Context, key string, version int64) (*matching.Ranking, error)

// Snapshot is a point-in-time view of one cache entry.
type Snapshot struct {
	State           State
	Version         int64
	LatestVersion   int64
	InFlightVersion int64
	Result          *matching.Ranking
	LastError       error
}

type call struct {
	version    int64
	done       chan struct{}
	cancel     context.CancelFunc
	result     *matching.Ranking
	err        error
	superseded bool
}

type entry struct {
	state    State
	version  int64
	latest   int64
	result   *matching.Ranking
	lastErr  error
	inflight *call
}

// Coordinator caches rankings per requirement set and guarantees at most one
// computation in flight per key. Newer versions supersede older ones.
type Coordinator struct {
	mu      sync.Mutex
	entries map[string]*entry

	compute ComputeFunc
	logger  *zap.Logger

	base   context.Context
	cancel context.CancelFunc
}

func New(compute ComputeFunc, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		entries: make(map[string]*entry),
		compute: compute,
		logger:  logger,
		base:    base,
		cancel:  cancel,
	}
}

// GetOrCompute returns the ranking for key at version or newer. It joins a running
// computation of the same or a newer version and starts one otherwise. ctx only
// bounds the wait; the computation itself keeps running for other waiters.
func (c *Coordinator) GetOrCompute(ctx context.Context, key string, version int64) (*matching.Ranking, error) {
	if version < 1 {
		return nil, fmt.Errorf("version must be positive, got %d", version)
	}

	for {
		c.mu.Lock()
		e, ok := c.entries[key]
		if !ok {
			e = &entry{}
			c.entries[key] = e
		}

		want := max(version, e.latest)
		if e.state == StateReady && e.version >= want {
			res := e.result
			c.mu.Unlock()
			return res, nil
		}

		cl := e.inflight
		if cl == nil || cl.version < want {
			cl = c.startLocked(key, e, want)
		}
		c.mu.Unlock()

		select {
		case <-cl.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if cl.superseded {
			continue
		}
		return cl.result, cl.err
	}
}

// Refresh recomputes the latest known version of key even when a result is cached.
func (c *Coordinator) Refresh(ctx context.Context, key string) (*matching.Ranking, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.latest == 0 {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	version := e.latest
	c.startLocked(key, e, version)
	c.mu.Unlock()

	return c.GetOrCompute(ctx, key, version)
}

// Invalidate drops the entry; a running computation for it is cancelled and its
// result discarded.
func (c *Coordinator) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if e.inflight != nil {
			e.inflight.cancel()
		}
		delete(c.entries, key)
		c.logger.Debug("match cache invalidated", zap.String("requirement_set", key))
	}
}

// Reset drops every entry.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.inflight != nil {
			e.inflight.cancel()
		}
	}
	c.entries = make(map[string]*entry)
	c.logger.Debug("match cache reset")
}

// Close cancels every running computation.
func (c *Coordinator) Close() {
	c.cancel()
}

func (c *Coordinator) Snapshot(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	s := Snapshot{
		State:         e.state,
		Version:       e.version,
		LatestVersion: e.latest,
		Result:        e.result,
		LastError:     e.lastErr,
	}
	if e.inflight != nil {
		s.InFlightVersion = e.inflight.version
	}
	return s, true
}

// Explain returns the cached match of one candidate. It never triggers a computation.
func (c *Coordinator) Explain(key, candidateID string) (matching.CandidateMatch, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.state != StateReady || e.result == nil {
		c.mu.Unlock()
		return matching.CandidateMatch{}, ErrNotReady
	}
	res := e.result
	c.mu.Unlock()

	m, ok := res.Find(candidateID)
	if !ok {
		return matching.CandidateMatch{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
	}
	return *m, nil
}

// startLocked must be called with c.mu held. A running call for the key is cancelled
// and marked superseded when it completes.
func (c *Coordinator) startLocked(key string, e *entry, version int64) *call {
	if e.inflight != nil {
		e.inflight.cancel()
		c.logger.Debug("superseding match computation",
			zap.String("requirement_set", key),
			zap.Int64("old_version", e.inflight.version),
			zap.Int64("version", version),
		)
	}

	ctx, cancel := context.WithCancel(c.base)
	cl := &call{version: version, done: make(chan struct{}), cancel: cancel}
	e.inflight = cl
	e.state = StateComputing
	e.latest = max(e.latest, version)

	go c.run(ctx, key, e, cl)
	return cl
}

func (c *Coordinator) run(ctx context.Context, key string, e *entry, cl *call) {
	res, err := c.safeCompute(ctx, key, cl.version)
	cl.cancel()

	c.mu.Lock()
	cl.result, cl.err = res, err
	switch {
	case c.entries[key] != e || e.inflight != cl:
		cl.superseded = true
		c.logger.Debug("discarding outdated match computation",
			zap.String("requirement_set", key),
			zap.Int64("version", cl.version),
		)
	case err != nil:
		e.inflight = nil
		e.state = StateEmpty
		e.result = nil
		e.version = 0
		e.lastErr = err
		c.logger.Warn("match computation failed",
			zap.String("requirement_set", key),
			zap.Int64("version", cl.version),
			zap.Error(err),
		)
	default:
		e.inflight = nil
		e.state = StateReady
		e.result = res
		e.version = max(cl.version, res.Version)
		e.latest = max(e.latest, e.version)
		e.lastErr = nil
		c.logger.Info("match results ready",
			zap.String("requirement_set", key),
			zap.Int64("version", e.version),
			zap.Int("matches", len(res.Matches)),
		)
	}
	c.mu.Unlock()

	close(cl.done)
}

func (c *Coordinator) safeCompute(ctx context.Context, key string, version int64) (res *matching.Ranking, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("computing %q v%d: panic: %v", key, version, p)
		}
	}()

	res, err = c.compute(ctx, key, version)
	if err == nil && res == nil {
		err = fmt.Errorf("computing %q v%d: empty result", key, version)
	}
	return res, err
}
