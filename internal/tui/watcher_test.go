package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pablasso/oracle/internal/state"
)

func TestWatcher_SignalsOnSave(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(filepath.Join(dir, state.DefaultFileName))

	w, err := NewWatcher(store.Path())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	if err := store.Save(state.Default()); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("expected change signal after save")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, state.DefaultFileName))
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	select {
	case <-w.Changes():
		t.Fatal("unexpected change signal for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), state.DefaultFileName))
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close returned error: %v", err)
	}
}
