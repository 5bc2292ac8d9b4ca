package chat

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peora/internal/adapter/tui/components"
	"peora/internal/adapter/tui/theme"
	"peora/internal/adapter/tui/uxerror"
	"peora/internal/domain"
	"peora/internal/usecase"
)

// TypingText is shown below the log while a reply is pending.
const TypingText = "Digitando..."

// Deps are the use cases the chat model drives.
type Deps struct {
	Session   *usecase.Session
	Turns     *usecase.TurnController
	Audio     *usecase.AudioPipeline
	Logger    *slog.Logger
	ModelName string
}

// Model is the root Bubble Tea model. The session is the source of truth;
// the model mirrors it on every SessionEventMsg.
type Model struct {
	deps Deps
	ctx  context.Context

	header    components.HeaderModel
	picker    components.ProfilePickerModel
	chatView  components.ChatViewModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	snap      usecase.SessionSnapshot
	recording domain.RecordingState
	width     int
	height    int
	quitting  bool
}

// NewModel creates the chat model. ctx scopes every request the model
// starts; cancelling it aborts in-flight turns and transcriptions.
func NewModel(ctx context.Context, deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)

	sb := components.NewStatusBar()
	sb.ModelName = deps.ModelName

	m := Model{
		deps:      deps,
		ctx:       ctx,
		picker:    components.NewProfilePicker(),
		chatView:  components.NewChatView(),
		input:     components.NewInputArea(usecase.InputPlaceholder),
		statusBar: sb,
		spinner:   s,
	}
	m.sync()
	return m
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ProfileSelectedMsg:
		if err := m.deps.Session.SelectRole(m.ctx, msg.Role); err != nil {
			m.deps.Logger.Warn("select role failed", "role", msg.Role, "error", err)
		}
		m.sync()
		return m, nil

	case components.InputSubmitMsg:
		return m.handleSubmit()

	case SessionEventMsg:
		m.sync()
		return m, nil

	case TurnDoneMsg:
		m.sync()
		return m, nil

	case AudioDoneMsg:
		if msg.Err != nil {
			notice := uxerror.Humanize(msg.Err)
			m.deps.Logger.Warn("audio failed", "notice", notice.Title, "error", notice.Raw)
			m.statusBar.Notice = notice.String()
		}
		m.sync()
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.chatView.SetFooter(m.typingFooter())
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	m.statusBar.Notice = ""

	if !m.snap.HasRole() {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Record):
		return m, toggleRecordingCmd(m.ctx, m.deps.Audio)
	case key.Matches(msg, keys.Cancel):
		if m.recording == domain.RecordingActive {
			return m, cancelRecordingCmd(m.ctx, m.deps.Audio)
		}
		return m, nil
	case key.Matches(msg, keys.PgUp), key.Matches(msg, keys.PgDown):
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	case key.Matches(msg, keys.Top):
		m.chatView.GotoTop()
		return m, nil
	case key.Matches(msg, keys.Bottom):
		m.chatView.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Enabled && m.input.Value() != m.snap.Pending {
		m.deps.Session.SetPendingInput(m.input.Value())
		m.snap.Pending = m.input.Value()
	}
	return m, cmd
}

// handleSubmit starts a turn unless one is already in flight.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.snap.Busy || !m.input.Enabled {
		return m, nil
	}
	m.snap.Busy = true
	return m, sendCmd(m.ctx, m.deps.Turns)
}

// sync mirrors session and audio state into the sub-models.
func (m *Model) sync() {
	prevPhase := m.snap.Phase
	m.snap = m.deps.Session.Snapshot()
	m.recording = m.deps.Audio.State()
	field := m.deps.Audio.InputField()

	m.header.Role = m.snap.Role
	m.chatView.Messages.Role = m.snap.Role
	for _, msg := range m.snap.Messages[min(m.chatView.Messages.Len(), len(m.snap.Messages)):] {
		m.chatView.AddMessage(components.ChatMessage{ID: msg.ID, Author: msg.Author, Text: msg.Text})
	}
	m.chatView.SetFooter(m.typingFooter())

	m.input.SetEnabled(field.Editable)
	m.input.Status = field.Status
	if field.Editable {
		m.input.SetValue(field.Text)
	}

	switch {
	case !m.snap.HasRole():
		m.statusBar.Hints = pickerHints()
	case m.recording == domain.RecordingActive:
		m.statusBar.Hints = recordingHints()
	default:
		m.statusBar.Hints = conversationHints()
	}

	if prevPhase != m.snap.Phase {
		m.layout()
	}
}

func (m Model) typingFooter() string {
	if !m.snap.Busy {
		return ""
	}
	return theme.BotLabel.Render(theme.Symbols.Bot) + " " + m.spinner.View() + theme.Typing.Render(TypingText)
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.input.SetWidth(m.width)

	contentH := m.height - m.header.Height() - lipgloss.Height(m.bottomView()) - 2 // divider + status bar
	if contentH < 3 {
		contentH = 3
	}
	m.chatView.SetSize(m.width, contentH)
}

func (m Model) bottomView() string {
	if !m.snap.HasRole() {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.picker.View())
	}
	return m.input.View()
}

// View renders the entire chat UI.
func (m Model) View() string {
	if m.quitting {
		return "Até logo!\n"
	}
	if m.width == 0 {
		return "  Iniciando..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.chatView.View(),
		components.Divider(m.width),
		m.bottomView(),
		m.statusBar.View(),
	)
}
