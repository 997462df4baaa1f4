package loop

// Planner maps a finished task name to the tasks appended to the queue
// after it completes. Matching is exact.
type Planner map[string][]string

// DefaultPlanner returns the self-planning rules of the runner.
func DefaultPlanner() Planner {
	return Planner{
		"Design progress dashboard":     {"Implement live HTML dashboard"},
		"Implement live HTML dashboard": {"Improve execution loop"},
	}
}

// FollowUps returns the tasks to enqueue after task finishes, or nil.
func (p Planner) FollowUps(task string) []string {
	next, ok := p[task]
	if !ok {
		return nil
	}
	out := make([]string, len(next))
	copy(out, next)
	return out
}
