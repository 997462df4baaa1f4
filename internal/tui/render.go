package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pablasso/oracle/internal/state"
	"github.com/pablasso/oracle/internal/tui/styles"
)

const placeholder = "—"

// RenderSnapshot renders the state document as styled terminal text.
// indicator is shown before the current task (e.g. a spinner frame).
func RenderSnapshot(st *state.State, logTail int, now time.Time, indicator string) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("ORACLE – Autonomous System"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %s\n", styles.SectionStyle.Render("Status:"), st.Status)
	fmt.Fprintf(&b, "%s %s\n", styles.SectionStyle.Render("Last update:"), lastUpdate(st.LastUpdate, now))
	b.WriteString("\n")

	b.WriteString(styles.SectionStyle.Render("Current Task"))
	b.WriteString("\n")
	if st.CurrentTask != nil {
		if indicator != "" {
			b.WriteString(indicator + " ")
		}
		b.WriteString(*st.CurrentTask)
	} else {
		b.WriteString(styles.SubtleStyle.Render(placeholder))
	}
	b.WriteString("\n\n")

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		renderList("Worked", st.Worked, styles.SuccessStyle),
		renderList("Failed", st.Failed, styles.ErrorStyle),
		renderList("Next", st.Next, styles.QueueStyle),
	)
	b.WriteString(columns)
	b.WriteString("\n\n")

	b.WriteString(styles.SectionStyle.Render("Log"))
	b.WriteString("\n")
	recent := st.RecentLog(logTail)
	if len(recent) == 0 {
		b.WriteString(styles.SubtleStyle.Render(placeholder))
		b.WriteString("\n")
	}
	for _, entry := range recent {
		b.WriteString("  " + entry + "\n")
	}

	return b.String()
}

// renderList renders a titled column of tasks.
func renderList(title string, items []string, style lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(style.Bold(true).Render(fmt.Sprintf("%s (%d)", title, len(items))))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(styles.SubtleStyle.Render(placeholder))
	}
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(style.Render("• " + item))
	}
	return lipgloss.NewStyle().MarginRight(4).Render(b.String())
}

func lastUpdate(t *time.Time, now time.Time) string {
	if t == nil {
		return placeholder
	}
	return fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.RelTime(*t, now, "ago", "from now"))
}
