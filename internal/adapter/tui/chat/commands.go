package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"peora/internal/usecase"
)

// sendCmd runs one conversation turn off the UI goroutine.
func sendCmd(ctx context.Context, turns *usecase.TurnController) tea.Cmd {
	return func() tea.Msg {
		return TurnDoneMsg{Sent: turns.Send(ctx)}
	}
}

// toggleRecordingCmd starts or stops the microphone. Stopping blocks until
// the transcript is in the input, so it must not run on the UI goroutine.
func toggleRecordingCmd(ctx context.Context, audio *usecase.AudioPipeline) tea.Cmd {
	return func() tea.Msg {
		return AudioDoneMsg{Err: audio.Toggle(ctx)}
	}
}

func cancelRecordingCmd(ctx context.Context, audio *usecase.AudioPipeline) tea.Cmd {
	return func() tea.Msg {
		return AudioDoneMsg{Err: audio.Cancel(ctx)}
	}
}
