// ABOUTME: Scrollable panel listing parsed events followed by lint findings for the current notation.
// ABOUTME: Wraps a bubbles viewport; content is rebuilt whenever the playground re-parses.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/render"
	"github.com/charmbracelet/bubbles/viewport"
)

// EventListModel shows the events and diagnostics of the last parse.
type EventListModel struct {
	viewport viewport.Model
	events   []marble.Event
	diags    []marble.Diagnostic
	width    int
	height   int
}

// NewEventListModel creates an empty event list.
func NewEventListModel() EventListModel {
	return EventListModel{
		viewport: viewport.New(80, 10),
	}
}

// SetContent replaces the listed events and diagnostics.
func (m *EventListModel) SetContent(events []marble.Event, diags []marble.Diagnostic) {
	m.events = events
	m.diags = diags
	m.syncViewport()
}

// SetSize sets the panel's outer dimensions.
func (m *EventListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Account for border (2) and title line (1)
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
}

// ScrollUp scrolls the list by one line.
func (m *EventListModel) ScrollUp() {
	m.viewport.ScrollUp(1)
}

// ScrollDown scrolls the list by one line.
func (m *EventListModel) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// Lines returns the unstyled content lines, mostly for tests.
func (m EventListModel) Lines() []string {
	return contentLines(m.events, m.diags)
}

// View renders the panel.
func (m EventListModel) View() string {
	title := fmt.Sprintf("EVENTS (%d)", len(m.events))
	if len(m.diags) > 0 {
		title += fmt.Sprintf(" · LINT (%d)", len(m.diags))
	}

	content := m.viewport.View()
	if len(m.events) == 0 && len(m.diags) == 0 {
		content = "No events yet"
	}

	rendered := TitleStyle.Render(title) + "\n" + content
	if m.width <= 2 || m.height <= 2 {
		return BorderStyle.Render(rendered)
	}
	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

func (m *EventListModel) syncViewport() {
	var lines []string
	for _, e := range m.events {
		lines = append(lines, formatEvent(e))
	}
	for _, d := range m.diags {
		lines = append(lines, StyleForSeverity(d.Severity).Render(d.String()))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoTop()
}

// contentLines mirrors syncViewport without styling.
func contentLines(events []marble.Event, diags []marble.Diagnostic) []string {
	var lines []string
	for _, e := range events {
		lines = append(lines, plainEvent(e))
	}
	for _, d := range diags {
		lines = append(lines, d.String())
	}
	return lines
}

func plainEvent(e marble.Event) string {
	return fmt.Sprintf("%4d  %-11s %s", e.Frame, e.Kind, eventDetail(e))
}

func formatEvent(e marble.Event) string {
	frame := LabelStyle.Width(6).Render(fmt.Sprintf("%4d", e.Frame))
	kind := StyleForKind(e.Kind).Render(fmt.Sprintf("%-11s", e.Kind))
	return frame + kind + " " + eventDetail(e)
}

func eventDetail(e marble.Event) string {
	switch e.Kind {
	case marble.KindNext:
		return render.TextOf(e.Value)
	case marble.KindError:
		return render.TextOf(e.Err)
	default:
		return ""
	}
}
