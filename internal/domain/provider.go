package domain

import "context"

// CompletionProvider is the remote chat-completion backend.
type CompletionProvider interface {
	// Chat issues exactly one completion request.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Name returns the provider identifier (e.g. "groq").
	Name() string
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// Recorder is the platform microphone capability.
type Recorder interface {
	// Start begins capturing audio. No network I/O happens here.
	Start(ctx context.Context) error
	// Stop finalizes the capture and returns a handle to the recorded audio.
	// A zero handle means nothing was captured.
	Stop(ctx context.Context) (AudioHandle, error)
	// Cancel aborts an active capture and discards its output.
	Cancel(ctx context.Context) error
}

// AudioFetcher retrieves the raw bytes behind a local AudioHandle.
type AudioFetcher interface {
	Fetch(ctx context.Context, h AudioHandle) ([]byte, error)
	// Release frees whatever backs the handle (e.g. a temp file).
	Release(h AudioHandle) error
}
