package domain

// Baseline is the number of chunks a rule is allowed to find.
// It is recorded outside the engine and may only be lowered by a human.
type Baseline int

// Allows reports whether found chunks fit under the baseline.
func (b Baseline) Allows(found int) bool {
	return found <= int(b)
}
