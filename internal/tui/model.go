// Package tui implements the live terminal status view of the task loop.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/oracle/internal/state"
	"github.com/pablasso/oracle/internal/tui/components"
	"github.com/pablasso/oracle/internal/tui/styles"
)

// Options configures the status view.
type Options struct {
	// Refresh is the fallback reload interval when no file events arrive.
	Refresh time.Duration
	// LogTail is how many recent log entries are shown.
	LogTail int
}

// stateLoadedMsg carries a fresh read of the state document.
type stateLoadedMsg struct {
	state *state.State
	err   error
}

// fileChangedMsg is sent when the watcher sees the state file change.
type fileChangedMsg struct{}

// refreshTickMsg drives the fallback reload.
type refreshTickMsg time.Time

// watchErrorMsg reports a failure from the file watcher.
type watchErrorMsg struct {
	err error
}

// WatchModel is the Bubble Tea model for `oracle watch`. It only reads the
// state document.
type WatchModel struct {
	store     *state.Store
	changes   <-chan struct{}
	watchErrs <-chan error
	watchErr  error
	opts      Options
	snapshot  *state.State
	err       error
	spinner   spinner.Model
	statusBar components.StatusBar
	width     int
	now       func() time.Time
}

// NewWatchModel creates the status view. changes may be nil, in which case
// only the fallback tick reloads the document.
func NewWatchModel(store *state.Store, changes <-chan struct{}, opts Options) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.QueueStyle

	return WatchModel{
		store:     store,
		changes:   changes,
		opts:      opts,
		spinner:   s,
		statusBar: components.NewStatusBar(),
		now:       time.Now,
	}
}

// WithWatchErrors sets the channel of file watcher failures. A failure is
// shown below the snapshot; the fallback tick keeps reloading.
func (m WatchModel) WithWatchErrors(errs <-chan error) WatchModel {
	m.watchErrs = errs
	return m
}

// Init loads the document and starts the spinner, watcher, and ticker.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadState(),
		m.spinner.Tick,
		m.waitForChange(),
		m.waitForWatchError(),
		m.tick(),
	)
}

// Update handles messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.loadState()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snapshot = msg.state
		}
		return m, nil

	case fileChangedMsg:
		return m, tea.Batch(m.loadState(), m.waitForChange())

	case watchErrorMsg:
		m.watchErr = msg.err
		return m, m.waitForWatchError()

	case refreshTickMsg:
		return m, tea.Batch(m.loadState(), m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current snapshot.
func (m WatchModel) View() string {
	var body string
	switch {
	case m.snapshot != nil:
		body = RenderSnapshot(m.snapshot, m.opts.LogTail, m.now(), m.spinner.View())
	case m.err != nil:
		body = styles.ErrorStyle.Render("Waiting for state file: " + m.err.Error())
	default:
		body = styles.SubtleStyle.Render("Loading state...")
	}

	if m.snapshot != nil && m.err != nil {
		body += "\n" + styles.ErrorStyle.Render("Last read failed: "+m.err.Error())
	}

	if m.watchErr != nil {
		notice := "File watching failed: " + m.watchErr.Error()
		if m.opts.Refresh > 0 {
			notice += "\nReloading every " + m.opts.Refresh.String() + " instead."
		}
		body += "\n" + styles.BoxStyle.Render(styles.ErrorStyle.Render(notice))
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	return body + "\n" + m.statusBar.Render(width, []string{"r Reload", "q Quit", m.store.Path()})
}

// Snapshot returns the most recently loaded document, or nil.
func (m WatchModel) Snapshot() *state.State {
	return m.snapshot
}

// Err returns the error from the most recent read, if any.
func (m WatchModel) Err() error {
	return m.err
}

// WatchErr returns the most recent file watcher failure, if any.
func (m WatchModel) WatchErr() error {
	return m.watchErr
}

func (m WatchModel) loadState() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		st, err := store.Snapshot()
		return stateLoadedMsg{state: st, err: err}
	}
}

func (m WatchModel) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m WatchModel) waitForWatchError() tea.Cmd {
	if m.watchErrs == nil {
		return nil
	}
	errs := m.watchErrs
	return func() tea.Msg {
		err, ok := <-errs
		if !ok {
			return nil
		}
		return watchErrorMsg{err: err}
	}
}

func (m WatchModel) tick() tea.Cmd {
	if m.opts.Refresh <= 0 {
		return nil
	}
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}
