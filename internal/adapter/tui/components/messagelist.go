package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/theme"
	"peora/internal/domain"
)

// ChatMessage is one rendered conversation turn.
type ChatMessage struct {
	ID       int64
	Author   domain.Author
	Text     string
	Rendered string // cached glamour output; empty means not yet rendered
}

// MessageListModel renders the conversation log. Messages only ever get
// appended, mirroring the session store.
type MessageListModel struct {
	Messages   []ChatMessage
	Role       domain.Role // selects the user avatar
	width      int
	mdRenderer *glamour.TermRenderer
}

// NewMessageList creates an empty message list.
func NewMessageList() MessageListModel {
	return MessageListModel{}
}

// SetWidth updates the rendering width and clears cached renders.
func (m *MessageListModel) SetWidth(w int) {
	if w == m.width {
		return
	}
	m.width = w
	m.mdRenderer = nil
	for i := range m.Messages {
		m.Messages[i].Rendered = ""
	}
}

// Add appends a message.
func (m *MessageListModel) Add(msg ChatMessage) {
	m.Messages = append(m.Messages, msg)
}

// Len returns the number of messages.
func (m *MessageListModel) Len() int { return len(m.Messages) }

// View renders all messages as a single string.
func (m *MessageListModel) View() string {
	width := ContentWidth(m.width)

	var sb strings.Builder
	for i := range m.Messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(&m.Messages[i], width))
	}
	return sb.String()
}

func (m *MessageListModel) renderMessage(msg *ChatMessage, width int) string {
	header := m.authorLabel(msg.Author)

	var body string
	if msg.Author == domain.AuthorBot {
		if msg.Rendered == "" {
			msg.Rendered = m.renderMarkdown(msg.Text, width)
		}
		body = strings.Trim(msg.Rendered, "\n")
	} else {
		body = "  " + wrapText(msg.Text, width-2)
	}
	return header + "\n" + body
}

func (m *MessageListModel) authorLabel(a domain.Author) string {
	if a == domain.AuthorBot {
		return theme.BotLabel.Render(theme.Symbols.Bot + " Peora")
	}
	return theme.UserLabel.Render(UserAvatar(m.Role) + " " + UserName(m.Role))
}

// UserAvatar returns the icon for the user's profile: a shield for
// managers, a group for collaborators.
func UserAvatar(r domain.Role) string {
	switch r {
	case domain.RoleManager:
		return theme.Symbols.Manager
	case domain.RoleCollaborator:
		return theme.Symbols.Collaborator
	default:
		return theme.Symbols.User
	}
}

// UserName is the capitalized role label, or "Usuário" before a profile
// is chosen.
func UserName(r domain.Role) string {
	if !r.Valid() {
		return "Usuário"
	}
	label := r.Label()
	return strings.ToUpper(label[:1]) + label[1:]
}

func (m *MessageListModel) renderMarkdown(content string, width int) string {
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "  " + content
		}
		m.mdRenderer = r
	}
	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return "  " + content
	}
	return rendered
}

// wrapText wraps text to the given width with a 2-space indent on continuation lines.
// Uses rune-based indexing to safely handle multibyte UTF-8.
func wrapText(s string, width int) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, wrapLine(line, width))
	}
	return strings.Join(out, "\n  ")
}

func wrapLine(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	var lines []string
	for len(runes) > width {
		idx := -1
		for i := width - 1; i > 0; i-- {
			if runes[i] == ' ' {
				idx = i
				break
			}
		}
		if idx <= 0 {
			idx = width
		}
		lines = append(lines, string(runes[:idx]))
		runes = runes[idx:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return strings.Join(lines, "\n  ")
}

// ContentWidth calculates the content width respecting MaxContentWidth.
func ContentWidth(termWidth int) int {
	return theme.Clamp(termWidth-4, 40, theme.MaxContentWidth)
}

// Divider renders a horizontal line at the given width.
func Divider(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorBorder).
		Render(strings.Repeat("─", max(width, 0)))
}
