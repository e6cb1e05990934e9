package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Skill is an entry of the canonical skill catalogue.
type Skill struct {
	ID              string   `json:"id" mapstructure:"id"`
	Name            string   `json:"name" mapstructure:"name"`
	Category        string   `json:"category" mapstructure:"category"`
	CompetencyArea  string   `json:"competency_area,omitempty" mapstructure:"competency_area"`
	IsCore          bool     `json:"is_core,omitempty" mapstructure:"is_core"`
	RelatedSkillIDs []string `json:"related_skill_ids,omitempty" mapstructure:"related_skill_ids"`
	// Aliases is the synonym group of the skill.
	Aliases []string `json:"aliases,omitempty" mapstructure:"aliases"`
}

// Taxonomy is an immutable, read-only skill catalogue.
type Taxonomy struct {
	skills  map[string]*Skill
	order   []string
	byName  map[string]string
	aliases []alias
}

type alias struct {
	term    string
	skillID string
}

// New builds a taxonomy from the given skills. Related skill ids are made symmetric.
func New(skills []Skill) (*Taxonomy, error) {
	t := &Taxonomy{
		skills: make(map[string]*Skill, len(skills)),
		byName: make(map[string]string, len(skills)),
	}

	for i := range skills {
		s := skills[i]
		s.ID = normalize(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("skill #%d: id is required", i)
		}
		if _, ok := t.skills[s.ID]; ok {
			return nil, fmt.Errorf("skill %q is declared twice", s.ID)
		}
		if strings.TrimSpace(s.Name) == "" {
			s.Name = s.ID
		}
		s.RelatedSkillIDs = append([]string(nil), s.RelatedSkillIDs...)
		s.Aliases = append([]string(nil), s.Aliases...)
		t.skills[s.ID] = &s
		t.order = append(t.order, s.ID)
	}

	seenAlias := make(map[string]string)
	for _, id := range t.order {
		s := t.skills[id]
		t.byName[normalize(s.Name)] = id

		for _, term := range append([]string{s.ID, s.Name}, s.Aliases...) {
			term = normalize(term)
			if term == "" {
				continue
			}
			if owner, ok := seenAlias[term]; ok {
				if owner != id {
					return nil, fmt.Errorf("synonym %q belongs to both %q and %q", term, owner, id)
				}
				continue
			}
			seenAlias[term] = id
			t.aliases = append(t.aliases, alias{term: term, skillID: id})
		}

		for _, rel := range s.RelatedSkillIDs {
			rel = normalize(rel)
			other, ok := t.skills[rel]
			if !ok || rel == id {
				continue
			}
			if !containsID(other.RelatedSkillIDs, id) {
				other.RelatedSkillIDs = append(other.RelatedSkillIDs, id)
			}
		}
	}

	for _, s := range t.skills {
		normalized := make([]string, 0, len(s.RelatedSkillIDs))
		for _, rel := range s.RelatedSkillIDs {
			rel = normalize(rel)
			if _, ok := t.skills[rel]; ok && rel != s.ID && !containsID(normalized, rel) {
				normalized = append(normalized, rel)
			}
		}
		sort.Strings(normalized)
		s.RelatedSkillIDs = normalized
	}

	// Longest terms first so substring matching prefers the most specific synonym.
	sort.SliceStable(t.aliases, func(i, j int) bool {
		if len(t.aliases[i].term) != len(t.aliases[j].term) {
			return len(t.aliases[i].term) > len(t.aliases[j].term)
		}
		return t.aliases[i].term < t.aliases[j].term
	})

	return t, nil
}

// Get returns the skill with the given canonical id.
func (t *Taxonomy) Get(id string) (Skill, bool) {
	if t == nil {
		return Skill{}, false
	}
	s, ok := t.skills[normalize(id)]
	if !ok {
		return Skill{}, false
	}
	return *s, true
}

// Len returns the number of skills in the catalogue.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Skills returns all skills in declaration order.
func (t *Taxonomy) Skills() []Skill {
	if t == nil {
		return nil
	}
	out := make([]Skill, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.skills[id])
	}
	return out
}

// Resolve maps a free-form skill name to a canonical skill id. Lookup goes through the
// exact id, the exact display name, the synonym groups and finally a substring match
// against the synonym groups. Matching is case-insensitive.
func (t *Taxonomy) Resolve(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	key := normalize(name)
	if key == "" {
		return "", false
	}

	if _, ok := t.skills[key]; ok {
		return key, true
	}
	if id, ok := t.byName[key]; ok {
		return id, true
	}
	for _, a := range t.aliases {
		if a.term == key {
			return a.skillID, true
		}
	}

	for _, a := range t.aliases {
		if len(a.term) < 2 {
			continue
		}
		if containsTerm(key, a.term) || (len(key) >= 3 && containsTerm(a.term, key)) {
			return a.skillID, true
		}
	}

	return "", false
}

// Canonical returns the canonical id for a possibly aliased skill id. Unknown ids are
// returned normalized.
func (t *Taxonomy) Canonical(id string) string {
	key := normalize(id)
	if t == nil {
		return key
	}
	if _, ok := t.skills[key]; ok {
		return key
	}
	for _, a := range t.aliases {
		if a.term == key {
			return a.skillID
		}
	}
	return key
}

// Related reports whether two skills are linked in the relation graph.
func (t *Taxonomy) Related(a, b string) bool {
	s, ok := t.Get(a)
	if !ok {
		return false
	}
	return containsID(s.RelatedSkillIDs, normalize(b))
}

// Normalize lowercases and trims a skill term.
func Normalize(s string) string {
	return normalize(s)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsTerm matches whole words so that "go" does not match "django".
func containsTerm(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		if boundary(haystack, start-1) && boundary(haystack, end) {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '#')
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
