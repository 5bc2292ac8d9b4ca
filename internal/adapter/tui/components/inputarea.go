package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/theme"
)

// InputSubmitMsg is sent when the user presses Enter on non-blank input.
type InputSubmitMsg struct {
	Value string
}

// InputAreaModel wraps a textarea with submit handling. Enter submits,
// Alt+Enter inserts a newline.
type InputAreaModel struct {
	Textarea textarea.Model
	Enabled  bool
	Status   string // shown instead of the textarea while set and disabled
	width    int
}

// NewInputArea creates an input area with sensible defaults.
func NewInputArea(placeholder string) InputAreaModel {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = theme.Symbols.ArrowR + " "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = theme.InputPrompt
	ta.FocusedStyle.Placeholder = theme.InputPlaceholder
	ta.Focus()

	return InputAreaModel{
		Textarea: ta,
		Enabled:  true,
	}
}

// SetWidth updates the textarea width.
func (m *InputAreaModel) SetWidth(w int) {
	m.width = w
	m.Textarea.SetWidth(w - 2)
}

// SetEnabled enables or disables editing.
func (m *InputAreaModel) SetEnabled(enabled bool) {
	m.Enabled = enabled
	if enabled {
		m.Textarea.Focus()
	} else {
		m.Textarea.Blur()
	}
}

// SetValue replaces the text when it differs, keeping the cursor at the end.
func (m *InputAreaModel) SetValue(v string) {
	if m.Textarea.Value() == v {
		return
	}
	m.Textarea.SetValue(v)
	m.Textarea.CursorEnd()
}

// Value returns the current input text.
func (m InputAreaModel) Value() string {
	return m.Textarea.Value()
}

// Update handles key events.
func (m InputAreaModel) Update(msg tea.Msg) (InputAreaModel, tea.Cmd) {
	if !m.Enabled {
		return m, nil
	}
	if _, ok := msg.(tea.MouseMsg); ok {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		value := m.Textarea.Value()
		if strings.TrimSpace(value) == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return InputSubmitMsg{Value: value}
		}
	}

	var cmd tea.Cmd
	m.Textarea, cmd = m.Textarea.Update(msg)
	return m, cmd
}

// View renders the input area. A disabled area with a status shows only
// the status line.
func (m InputAreaModel) View() string {
	if !m.Enabled && m.Status != "" {
		lines := []string{theme.Transcribing.Render("  " + m.Status)}
		for i := 1; i < m.Textarea.Height(); i++ {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}
	view := m.Textarea.View()
	if m.Status != "" {
		view += "\n" + theme.Recording.Render(theme.Symbols.Online+" "+m.Status)
	}
	return view
}
