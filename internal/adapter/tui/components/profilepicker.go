package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/theme"
	"peora/internal/domain"
)

// Profile picker texts.
const (
	PickerTitle    = "Selecione seu perfil"
	PickerSubtitle = "Escolha como deseja interagir com o sistema"
)

// ProfileSelectedMsg is sent when the user confirms a profile.
type ProfileSelectedMsg struct {
	Role domain.Role
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	First  key.Binding
	Second key.Binding
}

var pickerKeys = pickerKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k", "shift+tab")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab")),
	Select: key.NewBinding(key.WithKeys("enter", " ")),
	First:  key.NewBinding(key.WithKeys("1")),
	Second: key.NewBinding(key.WithKeys("2")),
}

// ProfilePickerModel lets the user choose between the selectable roles.
type ProfilePickerModel struct {
	Roles  []domain.Role
	Cursor int
}

// NewProfilePicker lists every selectable role in display order.
func NewProfilePicker() ProfilePickerModel {
	return ProfilePickerModel{Roles: domain.Roles()}
}

// Selected returns the role under the cursor.
func (m ProfilePickerModel) Selected() domain.Role {
	return m.Roles[m.Cursor]
}

// Update moves the cursor and emits ProfileSelectedMsg on confirmation.
func (m ProfilePickerModel) Update(msg tea.Msg) (ProfilePickerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, pickerKeys.Up):
		m.Cursor = (m.Cursor - 1 + len(m.Roles)) % len(m.Roles)
	case key.Matches(keyMsg, pickerKeys.Down):
		m.Cursor = (m.Cursor + 1) % len(m.Roles)
	case key.Matches(keyMsg, pickerKeys.First):
		m.Cursor = 0
		return m, m.selectCmd()
	case key.Matches(keyMsg, pickerKeys.Second) && len(m.Roles) > 1:
		m.Cursor = 1
		return m, m.selectCmd()
	case key.Matches(keyMsg, pickerKeys.Select):
		return m, m.selectCmd()
	}
	return m, nil
}

func (m ProfilePickerModel) selectCmd() tea.Cmd {
	role := m.Selected()
	return func() tea.Msg { return ProfileSelectedMsg{Role: role} }
}

// View renders the picker card.
func (m ProfilePickerModel) View() string {
	var rows []string
	for i, r := range m.Roles {
		icon := theme.Symbols.Manager
		if r == domain.RoleCollaborator {
			icon = theme.Symbols.Collaborator
		}
		label := icon + "  " + UserName(r)
		if i == m.Cursor {
			rows = append(rows, theme.PickerOptionActive.Render(theme.Symbols.ArrowR+" "+label))
		} else {
			rows = append(rows, theme.PickerOption.Render("  "+label))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.PickerTitle.Render(PickerTitle),
		theme.TextMuted.Render(PickerSubtitle),
		"",
		strings.Join(rows, "\n"),
	)
	return theme.PickerBox.Render(body)
}
