// Package components holds small reusable pieces of terminal UI.
package components

import (
	"strings"

	"github.com/pablasso/oracle/internal/tui/styles"
)

// StatusBar renders a bottom help bar showing contextual help items.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
// Empty items are skipped; the rest are joined with " • ".
func (s StatusBar) Render(width int, items []string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			parts = append(parts, item)
		}
	}
	return styles.StatusBarStyle.Width(width).Render(strings.Join(parts, " • "))
}
