package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"peora/internal/domain"
	"peora/internal/infra/logger"
)

// --- Mocks ---

type mockProvider struct {
	mu    sync.Mutex
	resp  *domain.ChatResponse
	err   error
	panic any
	calls int
	reqs  []domain.ChatRequest
	// observe runs inside Chat, while the request is in flight.
	observe func()
}

func (m *mockProvider) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.mu.Lock()
	m.calls++
	m.reqs = append(m.reqs, req)
	observe := m.observe
	m.mu.Unlock()

	if observe != nil {
		observe()
	}
	if m.panic != nil {
		panic(m.panic)
	}
	return m.resp, m.err
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func reply(text string) *domain.ChatResponse {
	return &domain.ChatResponse{Choices: []domain.ChatChoice{
		{Message: domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: text}},
	}}
}

type mockRecorder struct {
	started  atomic.Int32
	stopped  atomic.Int32
	canceled atomic.Int32
	handle   domain.AudioHandle
	startErr error
	stopErr  error
	// onStart and onStop run inside the recorder call, before it returns.
	onStart func()
	onStop  func()
}

func (m *mockRecorder) Start(context.Context) error {
	m.started.Add(1)
	if m.onStart != nil {
		m.onStart()
	}
	return m.startErr
}

func (m *mockRecorder) Stop(context.Context) (domain.AudioHandle, error) {
	m.stopped.Add(1)
	if m.onStop != nil {
		m.onStop()
	}
	return m.handle, m.stopErr
}

func (m *mockRecorder) Cancel(context.Context) error {
	m.canceled.Add(1)
	return nil
}

type mockFetcher struct {
	data     []byte
	err      error
	released []domain.AudioHandle
	mu       sync.Mutex
}

func (m *mockFetcher) Fetch(context.Context, domain.AudioHandle) ([]byte, error) {
	return m.data, m.err
}

func (m *mockFetcher) Release(h domain.AudioHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, h)
	return nil
}

type mockTranscriber struct {
	text  string
	err   error
	calls atomic.Int32
	last  domain.TranscriptionRequest
	// during runs while the transcription is in flight.
	during func()
}

func (m *mockTranscriber) Transcribe(_ context.Context, req domain.TranscriptionRequest) (string, error) {
	m.calls.Add(1)
	m.last = req
	if m.during != nil {
		m.during()
	}
	return m.text, m.err
}

var errBoom = errors.New("boom")

func newTestTurnController(t interface{ Fatalf(string, ...any) }, p *mockProvider) (*TurnController, *Session) {
	sess := NewSession(nil)
	prompts, err := NewPromptBuilder("llama-3.3-70b-versatile")
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}
	log := logger.Discard()
	tc := NewTurnController(sess, prompts, NewCompletionClient(p, log), NewErrorClassifier(), log)
	return tc, sess
}

func testTranscriptionOptions() TranscriptionOptions {
	return TranscriptionOptions{
		Model:       "whisper-large-v3-turbo",
		Filename:    "audio.webm",
		ContentType: "audio/webm",
	}
}
