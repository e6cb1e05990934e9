package requirements

import "fmt"

// ValidationError rejects a malformed or contentless requirement set before scoring.
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid requirement set: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid requirement set %q: %s: %s", e.ID, e.Field, e.Reason)
}

// SkillResolutionWarning reports a skill name kept as a keyword requirement.
type SkillResolutionWarning struct {
	Name    string
	Keyword string
}

func (w SkillResolutionWarning) String() string {
	return fmt.Sprintf("skill %q is not in the taxonomy; matching it as keyword %q", w.Name, w.Keyword)
}
