package components

import (
	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/theme"
	"peora/internal/domain"
)

// Header identity lines.
const (
	HeaderTitle    = "Peora | PeopleCare AI"
	HeaderSubtitle = "Assistente de RH para Licenças e INSS"
)

// HeaderModel renders the assistant identity and the chosen profile.
type HeaderModel struct {
	Role  domain.Role
	width int
}

// SetWidth updates the available width.
func (m *HeaderModel) SetWidth(w int) {
	m.width = w
}

// Height is the number of rows View occupies.
func (m HeaderModel) Height() int {
	return lipgloss.Height(m.View())
}

// View renders the header box.
func (m HeaderModel) View() string {
	status := theme.TextSuccess.Render(theme.Symbols.Online) + " " +
		theme.HeaderStatus.Render("Online | ") + theme.HeaderRole.Render(UserName(m.Role))

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderTitle.Render(theme.Symbols.Bot+" "+HeaderTitle),
		theme.HeaderSubtitle.Render(HeaderSubtitle),
		status,
	)
	return theme.HeaderBox.Width(max(m.width, 0)).Render(body)
}
