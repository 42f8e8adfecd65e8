// ABOUTME: Bubble Tea message types and commands used in the playground message loop.
// ABOUTME: SaveCmd writes the rendered SVG off the update loop and reports back with SavedMsg.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// SavedMsg reports the outcome of writing the SVG file.
type SavedMsg struct {
	Path  string
	Bytes int
	Err   error
}

// SaveCmd returns a command that writes svg to path.
func SaveCmd(path, svg string) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return SavedMsg{Path: path, Err: fmt.Errorf("write %s: %w", path, err)}
		}
		return SavedMsg{Path: path, Bytes: len(svg)}
	}
}
