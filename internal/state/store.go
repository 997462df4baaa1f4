package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultFileName is the state document path used when none is configured.
const DefaultFileName = "oracle_state.json"

// ErrCorrupt is returned by Snapshot for a document that cannot be parsed.
var ErrCorrupt = errors.New("state file is corrupt")

// Store loads and saves the state document at a fixed path.
// It does no locking of its own; the task loop is the only writer.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a store for the document at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// WithClock sets the time source used to stamp last_update (useful for testing).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path returns the location of the document.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing or unparseable document is replaced with
// the default, which is persisted and returned. Only storage I/O failures are
// returned as errors.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.reset()
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return s.reset()
	}
	if !st.Status.Valid() {
		return s.reset()
	}
	st.normalize()

	return &st, nil
}

// Snapshot reads the document without healing it. Unlike Load it never
// writes: a missing document returns an error wrapping os.ErrNotExist and an
// unparseable one returns ErrCorrupt.
func (s *Store) Snapshot() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !st.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrCorrupt, st.Status)
	}
	st.normalize()

	return &st, nil
}

// Reset overwrites the document with the default and returns it.
func (s *Store) Reset() (*State, error) {
	return s.reset()
}

func (s *Store) reset() (*State, error) {
	st := Default()
	if err := s.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Save stamps last_update with the current UTC time and atomically replaces
// the document. Uses a temp file + rename so readers never see a partial write.
func (s *Store) Save(st *State) error {
	now := s.now().UTC()
	st.LastUpdate = &now
	st.normalize()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Unique temp name per write; a reader healing a corrupt document may
	// save concurrently with the loop.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
