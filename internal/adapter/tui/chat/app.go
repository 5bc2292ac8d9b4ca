package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"peora/internal/domain"
)

// Run starts the Bubble Tea program and blocks until it exits. Bus events
// are forwarded into the update loop; quitting cancels every request the
// UI started and discards any recording in progress.
func Run(ctx context.Context, deps Deps, bus domain.EventBus, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	program := tea.NewProgram(NewModel(ctx, deps), opts...)

	unsub := bus.SubscribeAll(func(_ context.Context, event domain.Event) {
		program.Send(SessionEventMsg{Type: event.Type})
	})
	defer unsub()

	go func() {
		<-ctx.Done()
		program.Send(QuitMsg{})
	}()

	_, err := program.Run()
	cancel()

	if cerr := deps.Audio.Cancel(context.Background()); cerr != nil {
		deps.Logger.Warn("discard recording on exit failed", "error", cerr)
	}
	return err
}
