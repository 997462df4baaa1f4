package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/oracle/internal/state"
)

// Run starts the status view for store and blocks until the user quits.
// If file watching is unavailable, the view falls back to polling.
func Run(store *state.Store, opts Options, logger *slog.Logger) error {
	model := NewWatchModel(store, nil, opts)
	watcher, err := NewWatcher(store.Path())
	if err != nil {
		logger.Warn("file watching unavailable, polling instead", "path", store.Path(), "err", err)
	} else {
		defer watcher.Close()
		model = NewWatchModel(store, watcher.Changes(), opts).WithWatchErrors(watcher.Errors())
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
