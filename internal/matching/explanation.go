package matching

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxStrengthClusters = 3
	maxListedGaps       = 3
	maxReadinessMonths  = 24
)

// Explainer turns computed scores into human readable explanations.
type Explainer struct {
	cfg Config
}

func NewExplainer(cfg Config) *Explainer {
	return &Explainer{cfg: cfg}
}

// Explain explains a result with the default policy.
func Explain(res SkillResult, sub SubScores) MatchExplanation {
	return NewExplainer(DefaultConfig()).Explain(res, sub)
}

// Explain works only on already computed values and never rescores.
func (e *Explainer) Explain(res SkillResult, sub SubScores) MatchExplanation {
	overall := e.cfg.Overall(sub)

	var missing, missingRequired, missingCritical, underleveled, overqualified []SkillMatch
	for _, m := range res.Matches {
		switch m.Status {
		case StatusMissing:
			missing = append(missing, m)
			if m.Required {
				missingRequired = append(missingRequired, m)
			}
			if m.Critical {
				missingCritical = append(missingCritical, m)
			}
		case StatusUnderleveled:
			underleveled = append(underleveled, m)
		}
		if m.Overqualified {
			overqualified = append(overqualified, m)
		}
	}

	ex := MatchExplanation{
		Strengths:       strengths(res, sub),
		Gaps:            []string{},
		DevelopmentPath: []string{},
		RiskFactors:     []string{},
		Recommendations: []string{},
		Confidence:      e.cfg.Confidence,
	}

	if len(missingRequired) > 0 {
		ex.Gaps = append(ex.Gaps, "Missing required skills: "+listNames(missingRequired, maxListedGaps))
	}
	if len(underleveled) > 0 {
		parts := make([]string, 0, len(underleveled))
		for _, m := range underleveled {
			parts = append(parts, fmt.Sprintf("%s (%s, needs %s)", m.Name, m.CandidateLevel, m.RequiredLevel))
		}
		ex.Gaps = append(ex.Gaps, "Below required level: "+strings.Join(parts, ", "))
	}
	if sub.Experience < 50 {
		ex.Gaps = append(ex.Gaps, "Experience is outside the required range")
	}

	for _, m := range missing {
		ex.DevelopmentPath = append(ex.DevelopmentPath, fmt.Sprintf("Learn %s up to %s level", m.Name, m.RequiredLevel))
	}
	for _, m := range underleveled {
		ex.DevelopmentPath = append(ex.DevelopmentPath, fmt.Sprintf("Deepen %s from %s to %s", m.Name, m.CandidateLevel, m.RequiredLevel))
	}
	if sub.Experience < 60 {
		ex.DevelopmentPath = append(ex.DevelopmentPath, "Gain hands-on experience toward the required years")
	}

	if sub.Readiness < 50 {
		ex.RiskFactors = append(ex.RiskFactors, "Low readiness for rotation")
	}
	if sub.Experience < 50 {
		ex.RiskFactors = append(ex.RiskFactors, "Experience does not fit the role")
	}

	switch e.cfg.ReadinessLevel(overall) {
	case ReadinessReady:
		ex.Recommendations = append(ex.Recommendations, "Strong match: proceed to interview")
	case ReadinessDeveloping:
		ex.Recommendations = append(ex.Recommendations, "Potential match: consider with a development plan")
	default:
		ex.Recommendations = append(ex.Recommendations, "Weak match: not recommended for this role now")
	}
	if len(overqualified) > 0 {
		ex.Recommendations = append(ex.Recommendations, "Overqualified in "+listNames(overqualified, 0)+": consider a more senior role or mentoring duties")
	}
	if len(missingCritical) > 0 {
		ex.Recommendations = append(ex.Recommendations, "Critical skills missing: "+listNames(missingCritical, 0)+". Close these gaps before placement")
	}
	for _, m := range missing {
		if len(m.RelatedHeld) > 0 {
			ex.Recommendations = append(ex.Recommendations, fmt.Sprintf("Has related %s: a head start on %s", strings.Join(m.RelatedHeld, ", "), m.Name))
		}
	}

	months := 2*len(missing) + len(underleveled)
	if sub.Experience < 50 {
		months += 6
	}
	ex.EstimatedReadinessMonths = min(maxReadinessMonths, months)

	if res.Evaluated() == 0 {
		ex.Confidence = 0
	}
	return ex
}

type cluster struct {
	category     string
	contribution float64
	names        []string
}

func strengths(res SkillResult, sub SubScores) []string {
	byCategory := map[string]*cluster{}
	var order []*cluster
	for _, m := range res.Matches {
		if m.Status != StatusMatched {
			continue
		}
		category := m.Category
		if category == "" {
			category = "general"
		}
		c, ok := byCategory[category]
		if !ok {
			c = &cluster{category: category}
			byCategory[category] = c
			order = append(order, c)
		}
		c.contribution += m.Contribution
		c.names = append(c.names, m.Name)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].contribution != order[j].contribution {
			return order[i].contribution > order[j].contribution
		}
		return order[i].category < order[j].category
	})
	if len(order) > maxStrengthClusters {
		order = order[:maxStrengthClusters]
	}

	out := []string{}
	for _, c := range order {
		out = append(out, fmt.Sprintf("Strong %s skills: %s", c.category, strings.Join(c.names, ", ")))
	}
	if sub.Experience >= 70 {
		out = append(out, "Experience fits the required range")
	}
	if sub.Readiness >= 70 {
		out = append(out, "High readiness for rotation")
	}
	return out
}

// listNames joins skill names, collapsing the tail when limit > 0.
func listNames(ms []SkillMatch, limit int) string {
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name)
	}
	if limit > 0 && len(names) > limit {
		return fmt.Sprintf("%s and %d more", strings.Join(names[:limit], ", "), len(names)-limit)
	}
	return strings.Join(names, ", ")
}
