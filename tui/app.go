// ABOUTME: Top-level Bubble Tea model for the marble playground: notation and values inputs, live timeline, event list.
// ABOUTME: Every edit re-parses and re-lints the notation; ctrl+s writes the current SVG to the output path.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/2389-research/marble/marble"
	"github.com/2389-research/marble/marble/validator"
	"github.com/2389-research/marble/render"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultOutputPath is where ctrl+s writes when no path is configured.
const DefaultOutputPath = "marble.svg"

// FocusTarget identifies which input receives key presses.
type FocusTarget int

const (
	FocusNotation FocusTarget = iota
	FocusValues
)

func (f FocusTarget) String() string {
	if f == FocusValues {
		return "values"
	}
	return "notation"
}

// Options seeds the playground.
type Options struct {
	Notation            string
	Values              map[string]any
	ErrorMessage        string
	ExcludeSubscription bool
	Style               *render.Overrides
	OutputPath          string
}

// AppModel is the playground's tea.Model.
type AppModel struct {
	notation  textinput.Model
	values    textinput.Model
	focus     FocusTarget
	opts      Options
	events    []marble.Event
	raw       []marble.Event
	diags     []marble.Diagnostic
	parseErr  error
	valuesErr error
	list      EventListModel
	statusBar StatusBarModel
	width     int
	height    int
}

// NewAppModel creates the playground model and parses the initial notation.
func NewAppModel(opts Options) AppModel {
	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputPath
	}

	notation := textinput.New()
	notation.Prompt = "> "
	notation.Placeholder = "--a--b--|"
	notation.SetValue(opts.Notation)
	notation.Focus()

	values := textinput.New()
	values.Prompt = "> "
	values.Placeholder = `{"a": "Hello"}`
	if len(opts.Values) > 0 {
		if b, err := json.Marshal(opts.Values); err == nil {
			values.SetValue(string(b))
		}
	}

	m := AppModel{
		notation: notation,
		values:   values,
		opts:     opts,
		list:     NewEventListModel(),
	}
	m.statusBar.SetFocus(m.focus.String())
	m.reparse()
	return m
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case SavedMsg:
		return m.handleSaved(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Cursor blink and other input housekeeping.
	var cmd tea.Cmd
	if m.focus == FocusValues {
		m.values, cmd = m.values.Update(msg)
	} else {
		m.notation, cmd = m.notation.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.width < 40 || m.height < 14 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 40x14.", m.width, m.height)
	}

	inner := m.width - 4
	m.notation.Width = inner - 2
	m.values.Width = inner - 2
	m.statusBar.SetWidth(m.width)

	var b strings.Builder
	b.WriteString(TitleStyle.Render("marble playground"))
	b.WriteString("\n")
	b.WriteString(m.inputBox("NOTATION", m.notation.View(), m.focus == FocusNotation))
	b.WriteString("\n")
	b.WriteString(m.inputBox("VALUES (JSON)", m.values.View(), m.focus == FocusValues))
	b.WriteString("\n")
	b.WriteString(" " + Timeline(m.raw, m.width-2))
	b.WriteString("\n")
	b.WriteString(" " + m.problemLine())
	b.WriteString("\n")

	// title(1) + two input boxes(4 each) + timeline(1) + problem(1) + status(1)
	listHeight := m.height - 12
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width, listHeight)
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	return b.String()
}

func (m AppModel) inputBox(title, body string, focused bool) string {
	style := BorderStyle
	if focused {
		style = FocusedBorderStyle
	}
	return style.Width(m.width - 2).Render(TitleStyle.Render(title) + "\n" + body)
}

// problemLine shows the blocking parse or values error, if any.
func (m AppModel) problemLine() string {
	switch {
	case m.parseErr != nil:
		return ErrorStyle.Render(m.parseErr.Error())
	case m.valuesErr != nil:
		return ErrorStyle.Render(m.valuesErr.Error())
	default:
		return ""
	}
}

func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m AppModel) handleSaved(msg SavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusBar.SetMessage(msg.Err.Error(), true)
		return m, nil
	}
	m.statusBar.SetMessage(fmt.Sprintf("saved %s (%d bytes)", msg.Path, msg.Bytes), false)
	return m, nil
}

// handleKeyMsg processes app-level shortcuts and routes the rest to the focused input.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	case "ctrl+s":
		return m.save()
	case "up", "pgup":
		m.list.ScrollUp()
		return m, nil
	case "down", "pgdown":
		m.list.ScrollDown()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == FocusValues {
		before := m.values.Value()
		m.values, cmd = m.values.Update(msg)
		if m.values.Value() != before {
			m.reparse()
		}
	} else {
		before := m.notation.Value()
		m.notation, cmd = m.notation.Update(msg)
		if m.notation.Value() != before {
			m.reparse()
		}
	}
	return m, cmd
}

func (m *AppModel) toggleFocus() {
	if m.focus == FocusNotation {
		m.focus = FocusValues
		m.notation.Blur()
		m.values.Focus()
	} else {
		m.focus = FocusNotation
		m.values.Blur()
		m.notation.Focus()
	}
	m.statusBar.SetFocus(m.focus.String())
}

// save renders the current events and hands the write off to SaveCmd.
func (m AppModel) save() (tea.Model, tea.Cmd) {
	if err := m.Err(); err != nil {
		m.statusBar.SetMessage("not saved: "+err.Error(), true)
		return m, nil
	}
	return m, SaveCmd(m.opts.OutputPath, m.SVG())
}

// reparse refreshes events, timeline, and lint findings from the inputs.
func (m *AppModel) reparse() {
	values, err := parseValues(m.values.Value())
	m.valuesErr = err

	var payload any = marble.ErrMarble
	if m.opts.ErrorMessage != "" {
		payload = errors.New(m.opts.ErrorMessage)
	}
	text := m.notation.Value()
	exclude := m.opts.ExcludeSubscription

	m.events, m.parseErr = marble.ParseWith(text, marble.ParseOptions{
		Values:                    values,
		Error:                     payload,
		ExcludeSubscriptionEvents: exclude,
	})
	m.raw, _ = marble.ParseWith(text, marble.ParseOptions{
		Error:                     payload,
		ExcludeSubscriptionEvents: exclude,
	})
	m.diags = validator.Lint(text)

	m.list.SetContent(m.events, m.diags)
	m.statusBar.SetParse(m.events, m.diags)
	m.statusBar.SetMessage("", false)
}

// parseValues decodes the values input. Blank input means no mapping.
func parseValues(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(text), &values); err != nil {
		return nil, fmt.Errorf("values must be a JSON object: %w", err)
	}
	return values, nil
}

// Events returns the events of the last successful parse.
func (m AppModel) Events() []marble.Event {
	return m.events
}

// Diagnostics returns the lint findings for the current notation.
func (m AppModel) Diagnostics() []marble.Diagnostic {
	return m.diags
}

// Err returns the parse or values error blocking a save, if any.
func (m AppModel) Err() error {
	if m.parseErr != nil {
		return m.parseErr
	}
	return m.valuesErr
}

// SVG renders the current events with the configured style.
func (m AppModel) SVG() string {
	return render.SVG(m.events, m.opts.Style)
}

// Run starts the playground in the alternate screen and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
