// Package state defines the persisted document shared by the task loop and
// its readers, along with the store that loads and saves it.
package state

import "time"

// Status is the high-level phase of the task loop.
type Status string

// Status constants
const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusIdle     Status = "idle"
)

// Valid reports whether s is one of the known loop phases.
func (s Status) Valid() bool {
	switch s {
	case StatusStarting, StatusRunning, StatusIdle:
		return true
	}
	return false
}

// State is the single document persisted to disk.
type State struct {
	Status      Status     `json:"status" yaml:"status"`
	CurrentTask *string    `json:"current_task" yaml:"current_task"`
	Worked      []string   `json:"worked" yaml:"worked"`
	Failed      []string   `json:"failed" yaml:"failed"`
	Next        []string   `json:"next" yaml:"next"`
	Log         []string   `json:"log" yaml:"log"`
	LastUpdate  *time.Time `json:"last_update" yaml:"last_update"`
}

// BootstrapTasks seeds the queue of a freshly created document.
var BootstrapTasks = []string{
	"Initialize ORACLE core",
	"Design progress dashboard",
	"Enable self-development loop",
}

// Default returns a new copy of the default document.
func Default() *State {
	next := make([]string, len(BootstrapTasks))
	copy(next, BootstrapTasks)
	return &State{
		Status: StatusStarting,
		Worked: []string{},
		Failed: []string{},
		Next:   next,
		Log:    []string{},
	}
}

// HasCurrentTask reports whether a task is being executed.
func (s *State) HasCurrentTask() bool {
	return s.CurrentTask != nil
}

// SetCurrentTask marks task as in flight.
func (s *State) SetCurrentTask(task string) {
	s.CurrentTask = &task
}

// ClearCurrentTask marks the loop as between tasks.
func (s *State) ClearCurrentTask() {
	s.CurrentTask = nil
}

// PopNext removes and returns the front of the pending queue.
// Returns false if the queue is empty.
func (s *State) PopNext() (string, bool) {
	if len(s.Next) == 0 {
		return "", false
	}
	task := s.Next[0]
	s.Next = s.Next[1:]
	return task, true
}

// RecentLog returns the last n log entries in their original order.
func (s *State) RecentLog(n int) []string {
	if n <= 0 {
		return []string{}
	}
	if len(s.Log) <= n {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}

// normalize replaces missing lists with empty ones so the document always
// serializes with arrays.
func (s *State) normalize() {
	if s.Worked == nil {
		s.Worked = []string{}
	}
	if s.Failed == nil {
		s.Failed = []string{}
	}
	if s.Next == nil {
		s.Next = []string{}
	}
	if s.Log == nil {
		s.Log = []string{}
	}
}
