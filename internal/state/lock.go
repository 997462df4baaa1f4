package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrWriterActive is returned when another live process owns the document.
var ErrWriterActive = errors.New("state file already has a running writer")

// WriterLock is a PID lock file that keeps a second process from writing the
// same state document.
type WriterLock struct {
	path string
}

// NewWriterLock creates a lock manager for the document at statePath.
// The lock file lives next to it as <statePath>.lock.
func NewWriterLock(statePath string) *WriterLock {
	return &WriterLock{
		path: statePath + ".lock",
	}
}

// Path returns the lock file location.
func (l *WriterLock) Path() string {
	return l.path
}

// Acquire attempts to take the lock.
// Returns ErrWriterActive if it is held by another running process.
// Stale locks (from dead processes) are cleaned up.
// The state directory is created if it does not exist yet.
func (l *WriterLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	err := l.create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	pid, ok, err := l.owner()
	if err != nil {
		return err
	}
	if ok && processExists(pid) {
		return fmt.Errorf("%w (PID %d)", ErrWriterActive, pid)
	}

	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}

	// Only one retry so two processes racing on a stale lock cannot loop.
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (acquired during retry)", ErrWriterActive)
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}
	return nil
}

func (l *WriterLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// owner reads the PID from the lock file. ok is false when the file holds
// something other than a PID.
func (l *WriterLock) owner() (pid int, ok bool, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read existing lock file: %w", err)
	}
	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		return 0, false, nil
	}
	return pid, true, nil
}

// Release removes the lock file. Idempotent.
func (l *WriterLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether the lock is held by a live process.
// Stale or invalid lock files are removed.
func (l *WriterLock) IsLocked() (bool, error) {
	if _, err := os.Stat(l.path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat lock file: %w", err)
	}

	pid, ok, err := l.owner()
	if err != nil {
		return false, err
	}
	if ok && processExists(pid) {
		return true, nil
	}

	if removeErr := os.Remove(l.path); removeErr != nil && !os.IsNotExist(removeErr) {
		return false, fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}
	return false, nil
}

// processExists checks if a process with the given PID is running.
// Signal 0 checks for existence without delivering anything.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
