package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Enviar"
}

// StatusBarModel renders a bottom status bar with keybinding hints, the
// model in use and a transient notice.
type StatusBarModel struct {
	Hints     []KeyHint
	ModelName string
	Notice    string
	width     int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var right string
	if m.Notice != "" {
		right = theme.TextWarning.Render(theme.Symbols.Warning + " " + m.Notice)
	} else if m.ModelName != "" {
		right = theme.TextMuted.Render(m.ModelName)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).Render(bar)
}
