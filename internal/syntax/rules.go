package syntax

// RuleStack tracks the grammar rules a recursive-descent parser is inside.
type RuleStack struct {
	names []string
}

// Enter pushes a rule name. Callers defer Leave.
func (s *RuleStack) Enter(name string) {
	s.names = append(s.names, name)
}

// Leave pops the innermost rule.
func (s *RuleStack) Leave() {
	if len(s.names) > 0 {
		s.names = s.names[:len(s.names)-1]
	}
}

// Snapshot returns a copy of the current stack, outermost rule first.
func (s *RuleStack) Snapshot() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Depth returns the number of active rules.
func (s *RuleStack) Depth() int {
	return len(s.names)
}
