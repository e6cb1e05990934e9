package profile

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"time"
)

// Pool is a candidate list that filters can shrink in place.
type Pool struct {
	Items []*Candidate
}

// NewPool wraps a snapshot, sorted by id so that downstream work is order-independent.
func NewPool(candidates []*Candidate) *Pool {
	items := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			items = append(items, c)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &Pool{Items: items}
}

func (p *Pool) Len() int {
	return len(p.Items)
}

func (p *Pool) FindByID(id string) *Candidate {
	for _, c := range p.Items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *Pool) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, c := range p.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

// Exclude removes candidates by id and returns the removed ids. Order is preserved.
func (p *Pool) Exclude(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}
	return p.ExcludeFunc(func(c *Candidate) bool {
		_, ok := drop[c.ID]
		return ok
	})
}

// ExcludeFunc removes every candidate for which fn returns true.
func (p *Pool) ExcludeFunc(fn func(*Candidate) bool) []string {
	var excluded []string
	kept := p.Items[:0]
	for _, c := range p.Items {
		if fn(c) {
			excluded = append(excluded, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	p.Items = kept
	return excluded
}

type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	Reason     string
	ExcludedAt time.Time
}

// GetExcludedCandidatesFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedCandidatesFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExcludedCandidates{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(ids []string, reason string, at time.Time) {
	for _, id := range ids {
		e.Items = append(e.Items, &ExcludedCandidate{ID: id, Reason: reason, ExcludedAt: at.UTC()})
	}
}

func (e *ExcludedCandidates) CandidateIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, c := range e.Items {
		ids = append(ids, c.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
