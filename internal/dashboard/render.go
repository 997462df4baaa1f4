// Package dashboard serves the read-only HTML status page of the task loop.
package dashboard

import (
	"html/template"
	"io"
	"time"

	"github.com/pablasso/oracle/internal/state"
)

// Placeholder is shown when a field has no value.
const Placeholder = "—"

// Default rendering settings.
const (
	DefaultRefreshSeconds = 2
	DefaultLogTail        = 10
)

// Options controls how the page is rendered.
type Options struct {
	// RefreshSeconds is the client-side auto-refresh interval.
	RefreshSeconds int
	// LogTail is how many of the most recent log entries are shown.
	LogTail int
}

// DefaultOptions returns the standard rendering settings.
func DefaultOptions() Options {
	return Options{
		RefreshSeconds: DefaultRefreshSeconds,
		LogTail:        DefaultLogTail,
	}
}

type page struct {
	RefreshSeconds int
	Status         string
	LastUpdate     string
	CurrentTask    string
	Worked         []string
	Failed         []string
	Next           []string
	Log            []string
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>ORACLE – Autonomous Progress</title>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="{{.RefreshSeconds}}">
    <style>
        body { font-family: Arial; padding: 20px; }
        h1 { margin-bottom: 5px; }
        section { margin-bottom: 20px; }
        .ok { color: green; }
        .fail { color: red; }
        .next { color: blue; }
    </style>
</head>
<body>
    <h1>ORACLE – Autonomous System</h1>
    <p><b>Status:</b> {{.Status}}</p>
    <p><b>Last update:</b> {{.LastUpdate}}</p>

    <section id="current">
        <h2>Current Task</h2>
        <p>{{.CurrentTask}}</p>
    </section>

    <section id="worked">
        <h2 class="ok">Worked</h2>
        <ul>{{range .Worked}}<li>{{.}}</li>{{end}}</ul>
    </section>

    <section id="failed">
        <h2 class="fail">Failed</h2>
        <ul>{{range .Failed}}<li>{{.}}</li>{{end}}</ul>
    </section>

    <section id="next">
        <h2 class="next">Next</h2>
        <ul>{{range .Next}}<li>{{.}}</li>{{end}}</ul>
    </section>

    <section id="log">
        <h2>Log</h2>
        <ul>{{range .Log}}<li>{{.}}</li>{{end}}</ul>
    </section>
</body>
</html>
`))

// Render writes the dashboard for st to w.
func Render(w io.Writer, st *state.State, opts Options) error {
	p := page{
		RefreshSeconds: opts.RefreshSeconds,
		Status:         string(st.Status),
		LastUpdate:     Placeholder,
		CurrentTask:    Placeholder,
		Worked:         st.Worked,
		Failed:         st.Failed,
		Next:           st.Next,
		Log:            st.RecentLog(opts.LogTail),
	}
	if st.LastUpdate != nil {
		p.LastUpdate = st.LastUpdate.UTC().Format(time.RFC3339Nano)
	}
	if st.CurrentTask != nil {
		p.CurrentTask = *st.CurrentTask
	}
	return pageTemplate.Execute(w, p)
}
