package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ChatViewModel wraps a viewport with smart auto-scroll behavior.
// Auto-scroll is active when the user is at the bottom.
// If the user scrolls up, auto-scroll pauses.
// It resumes when the user scrolls back to the bottom.
type ChatViewModel struct {
	Viewport viewport.Model
	Messages MessageListModel
	Footer   string // rendered below the last message, e.g. the typing indicator
	ready    bool
	atBottom bool
}

// NewChatView creates a chat view. The viewport is initialized lazily on the first WindowSizeMsg.
func NewChatView() ChatViewModel {
	return ChatViewModel{
		Messages: NewMessageList(),
		atBottom: true,
	}
}

// SetSize sets the viewport dimensions and triggers content re-render.
func (m *ChatViewModel) SetSize(w, h int) {
	m.Messages.SetWidth(w)
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refreshContent()
}

// AddMessage appends a message and always scrolls to the latest one.
func (m *ChatViewModel) AddMessage(msg ChatMessage) {
	m.Messages.Add(msg)
	m.refreshContent()
	m.atBottom = true
	m.Viewport.GotoBottom()
}

// SetFooter replaces the footer line and keeps it in view when following.
func (m *ChatViewModel) SetFooter(footer string) {
	if footer == m.Footer {
		return
	}
	m.Footer = footer
	m.refreshContent()
	if m.atBottom {
		m.Viewport.GotoBottom()
	}
}

// GotoTop scrolls to the first message and pauses auto-scroll.
func (m *ChatViewModel) GotoTop() {
	m.Viewport.GotoTop()
	m.atBottom = m.Viewport.AtBottom()
}

// GotoBottom scrolls to the latest message and resumes auto-scroll.
func (m *ChatViewModel) GotoBottom() {
	m.Viewport.GotoBottom()
	m.atBottom = true
}

// Following reports whether new content scrolls into view automatically.
func (m ChatViewModel) Following() bool { return m.atBottom }

// Update handles viewport scrolling and tracks auto-scroll state.
func (m ChatViewModel) Update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the chat viewport.
func (m ChatViewModel) View() string {
	if !m.ready {
		return "  Iniciando..."
	}
	return m.Viewport.View()
}

func (m *ChatViewModel) refreshContent() {
	if !m.ready {
		return
	}
	content := m.Messages.View()
	if m.Footer != "" {
		content += "\n\n" + m.Footer
	}
	m.Viewport.SetContent(content)
}
