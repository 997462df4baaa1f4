package state

import (
	"encoding/json"
	"os"
	"time"
)

// Event type constants for the progress trail.
const (
	EventLoopStarted     = "loop_started"
	EventLoopIdle        = "loop_idle"
	EventTaskStarted     = "task_started"
	EventTaskCompleted   = "task_completed"
	EventTaskFailed      = "task_failed"
	EventTaskPlanned     = "task_planned"
	EventTaskInterrupted = "task_interrupted"
)

// ProgressEvent is a single line of the progress trail.
type ProgressEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id,omitempty"`
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// ProgressLogger appends events to a JSON Lines file next to the state document.
type ProgressLogger struct {
	path  string
	runID string
}

// NewProgressLogger creates a progress logger for the document at statePath.
// Events go to <statePath>.progress.log.
func NewProgressLogger(statePath, runID string) *ProgressLogger {
	return &ProgressLogger{
		path:  statePath + ".progress.log",
		runID: runID,
	}
}

// Path returns the trail location.
func (p *ProgressLogger) Path() string {
	return p.path
}

// Log appends a progress event to the trail.
func (p *ProgressLogger) Log(event string, data map[string]interface{}) error {
	entry := ProgressEvent{
		Timestamp: time.Now().UTC(),
		RunID:     p.runID,
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// LoopStarted logs a loop_started event.
func (p *ProgressLogger) LoopStarted(queued int) error {
	return p.Log(EventLoopStarted, map[string]interface{}{
		"queued": queued,
	})
}

// LoopIdle logs a loop_idle event.
func (p *ProgressLogger) LoopIdle() error {
	return p.Log(EventLoopIdle, nil)
}

// TaskStarted logs a task_started event.
func (p *ProgressLogger) TaskStarted(task string) error {
	return p.Log(EventTaskStarted, map[string]interface{}{
		"task": task,
	})
}

// TaskCompleted logs a task_completed event.
func (p *ProgressLogger) TaskCompleted(task string, duration time.Duration) error {
	return p.Log(EventTaskCompleted, map[string]interface{}{
		"task":        task,
		"duration_ms": duration.Milliseconds(),
	})
}

// TaskFailed logs a task_failed event.
func (p *ProgressLogger) TaskFailed(task string, duration time.Duration) error {
	return p.Log(EventTaskFailed, map[string]interface{}{
		"task":        task,
		"duration_ms": duration.Milliseconds(),
	})
}

// TaskPlanned logs a task_planned event for a follow-up appended to the queue.
func (p *ProgressLogger) TaskPlanned(trigger, task string) error {
	return p.Log(EventTaskPlanned, map[string]interface{}{
		"trigger": trigger,
		"task":    task,
	})
}

// TaskInterrupted logs a task_interrupted event for a task returned to the
// front of the queue on shutdown.
func (p *ProgressLogger) TaskInterrupted(task string) error {
	return p.Log(EventTaskInterrupted, map[string]interface{}{
		"task": task,
	})
}
