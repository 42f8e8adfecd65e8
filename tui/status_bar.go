// ABOUTME: Single-line status bar for the bottom of the playground.
// ABOUTME: Shows the focused input, event and frame counts, lint totals, and the last save or parse message.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/marble/marble"
)

// StatusBarModel displays playground state in a single line.
type StatusBarModel struct {
	focus    string
	events   int
	maxFrame int
	errors   int
	warnings int
	message  string
	failed   bool
	width    int
}

// SetFocus records which input has the cursor.
func (m *StatusBarModel) SetFocus(name string) {
	m.focus = name
}

// SetParse records the outcome of the latest parse and lint.
func (m *StatusBarModel) SetParse(events []marble.Event, diags []marble.Diagnostic) {
	m.events = len(events)
	m.maxFrame = marble.MaxFrame(events)
	m.errors, m.warnings = 0, 0
	for _, d := range diags {
		switch d.Severity {
		case marble.SeverityError:
			m.errors++
		case marble.SeverityWarning:
			m.warnings++
		}
	}
}

// SetMessage shows a transient message. Failed messages render in the error colour.
func (m *StatusBarModel) SetMessage(msg string, failed bool) {
	m.message = msg
	m.failed = failed
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Text returns the unstyled status line.
func (m StatusBarModel) Text() string {
	parts := []string{
		fmt.Sprintf("[%s]", m.focus),
		fmt.Sprintf("%d events", m.events),
		fmt.Sprintf("frames 0-%d", m.maxFrame),
	}
	if m.errors > 0 || m.warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d errors, %d warnings", m.errors, m.warnings))
	}
	parts = append(parts, "tab focus · ctrl+s save · esc quit")
	return strings.Join(parts, " | ")
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	line := m.Text()
	if m.message != "" {
		style := CompleteStyle
		if m.failed {
			style = ErrorStyle
		}
		line += " " + style.Render(m.message)
	}
	if m.width > 0 {
		return StatusBarStyle.Width(m.width).MaxHeight(1).Render(line)
	}
	return StatusBarStyle.Render(line)
}
