// Package loop runs the single-writer task loop: it pops tasks from the
// persisted queue, executes them, records the outcome, and plans follow-ups.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pablasso/oracle/internal/state"
)

// Default timings for the loop.
const (
	DefaultIdleInterval = 2 * time.Second
	DefaultWorkDelay    = 2 * time.Second
	DefaultSettleDelay  = 1 * time.Second
)

// Options configures the loop timings.
type Options struct {
	// IdleInterval is the wait between polls of an empty queue.
	IdleInterval time.Duration
	// WorkDelay is the simulated execution latency of each task.
	WorkDelay time.Duration
	// SettleDelay is the pause after recording a result.
	SettleDelay time.Duration
}

// DefaultOptions returns the standard loop timings.
func DefaultOptions() Options {
	return Options{
		IdleInterval: DefaultIdleInterval,
		WorkDelay:    DefaultWorkDelay,
		SettleDelay:  DefaultSettleDelay,
	}
}

// Cycle describes what a single Step did.
type Cycle struct {
	Idle    bool
	Task    string
	Outcome Outcome
	Planned []string
}

// Loop is the only writer of the state document.
type Loop struct {
	store    *state.Store
	lock     *state.WriterLock
	runner   Runner
	planner  Planner
	progress *state.ProgressLogger
	logger   *slog.Logger
	opts     Options
}

// New creates a Loop over store using the simulated runner and the default
// planning rules.
func New(store *state.Store, opts Options) *Loop {
	return &Loop{
		store:   store,
		lock:    state.NewWriterLock(store.Path()),
		runner:  NewSimulatedRunner(opts.WorkDelay),
		planner: DefaultPlanner(),
		logger:  slog.Default(),
		opts:    opts,
	}
}

// WithRunner sets a custom runner (useful for testing).
func (l *Loop) WithRunner(r Runner) *Loop {
	l.runner = r
	return l
}

// WithPlanner replaces the self-planning rules.
func (l *Loop) WithPlanner(p Planner) *Loop {
	l.planner = p
	return l
}

// WithProgress enables the JSON Lines progress trail.
func (l *Loop) WithProgress(p *state.ProgressLogger) *Loop {
	l.progress = p
	return l
}

// WithLogger sets the structured logger.
func (l *Loop) WithLogger(logger *slog.Logger) *Loop {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Run takes the writer lock, marks the loop running, and repeats Step until
// ctx is cancelled. It returns nil on cancellation and the storage error
// otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.lock.Acquire(); err != nil {
		return err
	}
	defer l.lock.Release()

	st, err := l.store.Load()
	if err != nil {
		return err
	}
	st.Status = state.StatusRunning
	if err := l.store.Save(st); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	l.logger.Info("loop started", "state_file", l.store.Path(), "queued", len(st.Next))
	l.record(func(p *state.ProgressLogger) error { return p.LoopStarted(len(st.Next)) })

	for {
		if _, err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("loop stopped")
				return nil
			}
			return err
		}
	}
}

// Step runs exactly one cycle: an idle wait when the queue is empty,
// otherwise one task from start to recorded result.
func (l *Loop) Step(ctx context.Context) (Cycle, error) {
	st, err := l.store.Load()
	if err != nil {
		return Cycle{}, err
	}

	task, ok := st.PopNext()
	if !ok {
		return Cycle{Idle: true}, l.idle(ctx, st)
	}

	st.SetCurrentTask(task)
	st.Log = append(st.Log, "Starting: "+task)
	if err := l.store.Save(st); err != nil {
		return Cycle{}, fmt.Errorf("failed to save state: %w", err)
	}
	l.logger.Info("task started", "task", task, "queued", len(st.Next))
	l.record(func(p *state.ProgressLogger) error { return p.TaskStarted(task) })

	startTime := time.Now()
	outcome, err := l.runner.Run(ctx, task)
	if err != nil {
		return Cycle{Task: task}, l.interrupt(st, task, err)
	}
	duration := time.Since(startTime)

	switch outcome {
	case OutcomeFailed:
		st.Failed = append(st.Failed, task)
		st.Log = append(st.Log, "Failed: "+task)
		l.logger.Warn("task failed", "task", task, "duration", duration)
		l.record(func(p *state.ProgressLogger) error { return p.TaskFailed(task, duration) })
	default:
		st.Worked = append(st.Worked, task)
		st.Log = append(st.Log, "Completed: "+task)
		l.logger.Info("task completed", "task", task, "duration", duration)
		l.record(func(p *state.ProgressLogger) error { return p.TaskCompleted(task, duration) })
	}

	planned := l.planner.FollowUps(task)
	for _, next := range planned {
		st.Next = append(st.Next, next)
		l.logger.Info("task planned", "trigger", task, "task", next)
		l.record(func(p *state.ProgressLogger) error { return p.TaskPlanned(task, next) })
	}

	st.ClearCurrentTask()
	if err := l.store.Save(st); err != nil {
		return Cycle{}, fmt.Errorf("failed to save state: %w", err)
	}

	cycle := Cycle{Task: task, Outcome: outcome, Planned: planned}
	return cycle, sleep(ctx, l.opts.SettleDelay)
}

// idle persists the idle status and waits for the idle interval.
func (l *Loop) idle(ctx context.Context, st *state.State) error {
	if st.Status != state.StatusIdle {
		l.logger.Info("queue empty, loop idle")
		l.record(func(p *state.ProgressLogger) error { return p.LoopIdle() })
	}
	st.Status = state.StatusIdle
	if err := l.store.Save(st); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return sleep(ctx, l.opts.IdleInterval)
}

// interrupt puts an unfinished task back at the front of the queue so a
// shutdown does not lose it.
func (l *Loop) interrupt(st *state.State, task string, cause error) error {
	st.Next = append([]string{task}, st.Next...)
	st.ClearCurrentTask()
	if err := l.store.Save(st); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to save state after interrupt: %w", err))
	}
	l.logger.Info("task interrupted", "task", task, "err", cause)
	l.record(func(p *state.ProgressLogger) error { return p.TaskInterrupted(task) })
	return cause
}

// record appends to the progress trail if one is configured. Failures are
// logged and otherwise ignored.
func (l *Loop) record(fn func(p *state.ProgressLogger) error) {
	if l.progress == nil {
		return
	}
	if err := fn(l.progress); err != nil {
		l.logger.Warn("failed to write progress event", "path", l.progress.Path(), "err", err)
	}
}
