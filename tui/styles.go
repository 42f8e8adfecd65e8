// ABOUTME: Defines lipgloss styles for the playground panels, event kinds, and lint severities.
// ABOUTME: Provides StyleForKind and StyleForSeverity so the timeline, event list, and lint panel agree on colours.
package tui

import (
	"github.com/2389-research/marble/marble"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	FocusedBorderStyle = BorderStyle.
				BorderForeground(lipgloss.Color("170"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Event kinds
	NextStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	CompleteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	ErrorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	SubscriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	AxisStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Lint severities
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)
)

// StyleForKind returns the display style for an event kind.
func StyleForKind(k marble.Kind) lipgloss.Style {
	switch k {
	case marble.KindNext:
		return NextStyle
	case marble.KindComplete:
		return CompleteStyle
	case marble.KindError:
		return ErrorStyle
	case marble.KindSubscribe, marble.KindUnsubscribe:
		return SubscriptionStyle
	default:
		return AxisStyle
	}
}

// StyleForSeverity returns the display style for a diagnostic severity.
func StyleForSeverity(severity string) lipgloss.Style {
	switch severity {
	case marble.SeverityError:
		return ErrorStyle
	case marble.SeverityWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}
