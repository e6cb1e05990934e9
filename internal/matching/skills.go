package matching

import (
	"time"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// Evaluator scores the skills of a candidate against a requirement set.
type Evaluator struct {
	cfg      Config
	taxonomy *taxonomy.Taxonomy
}

func NewEvaluator(cfg Config, tax *taxonomy.Taxonomy) *Evaluator {
	return &Evaluator{cfg: cfg, taxonomy: tax}
}

// Evaluate compares every required skill with the candidate's skills. now is the
// reference time for recency bonuses.
func (e *Evaluator) Evaluate(c *profile.Candidate, set *requirements.RequirementSet, now time.Time) SkillResult {
	held := e.index(c)

	var (
		res         SkillResult
		contributed float64
		possible    float64
	)

	for _, req := range set.RequiredSkills {
		m := SkillMatch{
			SkillID:       req.SkillID,
			Name:          req.Name,
			Category:      req.Category,
			RequiredLevel: req.Level,
			Weight:        req.Weight,
			Required:      req.Required,
			Critical:      req.IsCritical,
			Keyword:       req.Keyword,
		}
		possible += req.Weight * e.cfg.BaseUnit

		skill, ok := held[req.SkillID]
		if !ok {
			m.Gap = taxonomy.MaxOrdinalSpan
			m.Status = StatusMissing
			m.Contribution = -e.cfg.MinorPenalty
			if req.IsCritical {
				m.Contribution = -e.cfg.CriticalPenalty
			}
			m.RelatedHeld = e.relatedHeld(c, req.SkillID)
			res.Missing = append(res.Missing, req.SkillID)
		} else {
			cand, want := skill.Level.Ordinal(), req.Level.Ordinal()
			m.CandidateLevel = skill.Level
			m.Gap = want - cand

			if m.Gap <= 0 {
				m.Status = StatusMatched
				m.Contribution = req.Weight * e.cfg.BaseUnit * float64(min(cand-want+1, 2))
				m.Overqualified = cand-want >= 2
				res.Matched = append(res.Matched, req.SkillID)
				if m.Overqualified {
					res.Overqualified = append(res.Overqualified, req.SkillID)
				}
			} else {
				m.Status = StatusUnderleveled
				m.Contribution = req.Weight * e.cfg.BaseUnit / 2 * float64(cand) / float64(want)
				res.Underleveled = append(res.Underleveled, req.SkillID)
			}

			if m.Contribution > 0 {
				m.Contribution *= e.bonus(skill, now)
			}
		}

		contributed += m.Contribution
		res.Matches = append(res.Matches, m)
	}

	if possible > 0 {
		res.Score = clamp(contributed / possible * 100)
	}
	return res
}

func (e *Evaluator) bonus(s profile.CandidateSkill, now time.Time) float64 {
	m := 1.0
	if s.Endorsements > 0 {
		m *= e.cfg.EndorsementBonus
	}
	if s.LastUsedAt != nil && !s.LastUsedAt.Before(now.AddDate(-1, 0, 0)) {
		m *= e.cfg.RecencyBonus
	}
	return min(m, MaxBonusMultiplier)
}

// relatedHeld lists, in profile order, the candidate skills the taxonomy links to skillID.
func (e *Evaluator) relatedHeld(c *profile.Candidate, skillID string) []string {
	var names []string
	seen := map[string]bool{}
	for _, s := range c.Skills {
		id := ""
		if s.SkillID != "" {
			id = e.taxonomy.Canonical(s.SkillID)
		} else if resolved, ok := e.taxonomy.Resolve(s.Name); ok {
			id = resolved
		}
		if id == "" || seen[id] || !e.taxonomy.Related(skillID, id) {
			continue
		}
		seen[id] = true

		name := s.Name
		if known, ok := e.taxonomy.Get(id); ok {
			name = known.Name
		}
		names = append(names, name)
	}
	return names
}

// index keys candidate skills by canonical id and by normalized name. On duplicates
// the higher level wins.
func (e *Evaluator) index(c *profile.Candidate) map[string]profile.CandidateSkill {
	held := make(map[string]profile.CandidateSkill, len(c.Skills)*2)
	put := func(key string, s profile.CandidateSkill) {
		if key == "" {
			return
		}
		if prev, ok := held[key]; ok && (prev.Level > s.Level || (prev.Level == s.Level && prev.Endorsements >= s.Endorsements)) {
			return
		}
		held[key] = s
	}

	for _, s := range c.Skills {
		if s.SkillID != "" {
			put(e.taxonomy.Canonical(s.SkillID), s)
		} else if id, ok := e.taxonomy.Resolve(s.Name); ok {
			put(id, s)
		}
		put(taxonomy.Normalize(s.Name), s)
	}
	return held
}
