// Package chat implements the Bubble Tea chat interface for peora.
package chat

import "peora/internal/domain"

// SessionEventMsg is forwarded from the event bus whenever session or audio
// state changes. The model re-reads state rather than trusting the payload.
type SessionEventMsg struct {
	Type domain.EventType
}

// TurnDoneMsg signals that a Send call returned.
type TurnDoneMsg struct {
	Sent bool
}

// AudioDoneMsg signals that a recording toggle or cancel finished.
type AudioDoneMsg struct {
	Err error
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
