package loop

import (
	"context"
	"strings"
	"time"
)

// Outcome is the recorded result of executing a task.
type Outcome int

const (
	OutcomeWorked Outcome = iota
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWorked:
		return "worked"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// failureMarker routes a task to the failed list when it appears anywhere in
// the task text, ignoring case.
const failureMarker = "fail"

// Classify decides the outcome of a task from its text alone.
func Classify(task string) Outcome {
	if strings.Contains(strings.ToLower(task), failureMarker) {
		return OutcomeFailed
	}
	return OutcomeWorked
}

// Runner executes a single task.
// A returned error means the task was interrupted and has no outcome.
type Runner interface {
	Run(ctx context.Context, task string) (Outcome, error)
}

// SimulatedRunner stands in for real work: it waits Delay and then
// classifies the task by its text.
type SimulatedRunner struct {
	Delay time.Duration
}

// NewSimulatedRunner creates a runner with the given execution latency.
func NewSimulatedRunner(delay time.Duration) *SimulatedRunner {
	return &SimulatedRunner{Delay: delay}
}

// Run waits for the configured delay and classifies task.
func (r *SimulatedRunner) Run(ctx context.Context, task string) (Outcome, error) {
	if err := sleep(ctx, r.Delay); err != nil {
		return OutcomeWorked, err
	}
	return Classify(task), nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
