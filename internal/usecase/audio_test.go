package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peora/internal/domain"
	"peora/internal/infra/logger"
	"peora/internal/usecase/eventbus"
)

type audioFixture struct {
	session     *Session
	recorder    *mockRecorder
	fetcher     *mockFetcher
	transcriber *mockTranscriber
	pipeline    *AudioPipeline
}

func newAudioFixture(bus domain.EventBus) *audioFixture {
	f := &audioFixture{
		session:     NewSession(bus),
		recorder:    &mockRecorder{handle: domain.AudioHandle{URI: "/tmp/rec-1.webm", ContentType: "audio/webm"}},
		fetcher:     &mockFetcher{data: []byte("webm-bytes")},
		transcriber: &mockTranscriber{text: "Olá"},
	}
	f.pipeline = NewAudioPipeline(f.session, f.recorder, f.fetcher, f.transcriber, testTranscriptionOptions(), logger.Discard())
	return f
}

func TestAudioRecordAndTranscribe(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()
	f.session.SetPendingInput("texto anterior")

	require.NoError(t, f.pipeline.Toggle(ctx))
	assert.Equal(t, domain.RecordingActive, f.pipeline.State())

	require.NoError(t, f.pipeline.Toggle(ctx))

	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
	assert.Equal(t, "Olá", f.session.PendingInput(), "transcript replaces, never appends")
	assert.False(t, f.session.InputLocked())
	assert.Equal(t, int32(1), f.transcriber.calls.Load())
	assert.Equal(t, []domain.AudioHandle{f.recorder.handle}, f.fetcher.released)
}

func TestAudioTranscriptionRequestFields(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))

	req := f.transcriber.last
	assert.Equal(t, []byte("webm-bytes"), req.Audio)
	assert.Equal(t, "audio.webm", req.Filename)
	assert.Equal(t, "audio/webm", req.ContentType)
	assert.Equal(t, "whisper-large-v3-turbo", req.Model)
	assert.Equal(t, "pt", req.Language)
}

func TestAudioTranscriptTrimmed(t *testing.T) {
	f := newAudioFixture(nil)
	f.transcriber.text = "  Preciso de uma licença.\n"
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))
	assert.Equal(t, "Preciso de uma licença.", f.session.PendingInput())
}

func TestAudioTranscriptionFailureKeepsInput(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*audioFixture)
		sentinel error
	}{
		{"transcriber error", func(f *audioFixture) { f.transcriber.err = errBoom }, domain.ErrTranscription},
		{"fetch error", func(f *audioFixture) { f.fetcher.err = errBoom }, domain.ErrAudioFetch},
		{"empty audio", func(f *audioFixture) { f.fetcher.data = nil }, domain.ErrEmptyAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAudioFixture(nil)
			tt.mutate(f)
			ctx := context.Background()
			f.session.SetPendingInput("rascunho")

			require.NoError(t, f.pipeline.Start(ctx))
			err := f.pipeline.Stop(ctx)

			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, "rascunho", f.session.PendingInput())
			assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
			assert.False(t, f.session.InputLocked())
			assert.Len(t, f.fetcher.released, 1, "handle released on failure too")
			assert.Equal(t, 1, f.session.Store().Len(), "no chat message for transcription failures")
		})
	}
}

func TestAudioEmptyHandleReturnsToIdle(t *testing.T) {
	f := newAudioFixture(nil)
	f.recorder.handle = domain.AudioHandle{}
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))

	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
	assert.Zero(t, f.transcriber.calls.Load())
	assert.Empty(t, f.fetcher.released)
}

func TestAudioStopErrorReturnsToIdle(t *testing.T) {
	f := newAudioFixture(nil)
	f.recorder.stopErr = errBoom
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	err := f.pipeline.Stop(ctx)

	assert.ErrorIs(t, err, domain.ErrRecorder)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
}

func TestAudioStartFailureStaysIdle(t *testing.T) {
	f := newAudioFixture(nil)
	f.recorder.startErr = errors.New("no microphone")

	err := f.pipeline.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrRecorder)
	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
}

func TestAudioSecondStartIgnored(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Start(ctx))

	assert.Equal(t, int32(1), f.recorder.started.Load())
	assert.Equal(t, domain.RecordingActive, f.pipeline.State())
}

func TestAudioStopWhenIdleIgnored(t *testing.T) {
	f := newAudioFixture(nil)
	require.NoError(t, f.pipeline.Stop(context.Background()))
	assert.Zero(t, f.recorder.stopped.Load())
}

func TestAudioCancel(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Cancel(ctx))

	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
	assert.Equal(t, int32(1), f.recorder.canceled.Load())
	assert.Zero(t, f.transcriber.calls.Load())
	require.NoError(t, f.pipeline.Cancel(ctx), "cancel while idle is ignored")
	assert.Equal(t, int32(1), f.recorder.canceled.Load())
}

func TestAudioInputFieldWhileTranscribing(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()
	f.session.SetPendingInput("texto escondido")

	var during InputField
	var stateDuring domain.RecordingState
	var toggledDuring error
	var setDuring bool
	f.transcriber.during = func() {
		during = f.pipeline.InputField()
		stateDuring = f.pipeline.State()
		toggledDuring = f.pipeline.Toggle(ctx)
		setDuring = f.session.SetPendingInput("digitando por cima")
	}

	require.NoError(t, f.pipeline.Start(ctx))
	field := f.pipeline.InputField()
	assert.Equal(t, StatusRecording, field.Status)
	assert.True(t, field.Editable)

	require.NoError(t, f.pipeline.Stop(ctx))

	assert.Equal(t, domain.RecordingTranscribing, stateDuring)
	assert.Equal(t, InputField{Status: StatusTranscribing}, during, "blank, no placeholder, read-only")
	assert.NoError(t, toggledDuring)
	assert.Equal(t, int32(1), f.recorder.started.Load(), "toggle ignored while transcribing")
	assert.False(t, setDuring)

	field = f.pipeline.InputField()
	assert.Equal(t, InputField{Text: "Olá", Placeholder: InputPlaceholder, Editable: true}, field)
}

func TestAudioPublishesStateChanges(t *testing.T) {
	bus := eventbus.New(logger.Discard())
	f := newAudioFixture(bus)
	ctx := context.Background()

	var mu sync.Mutex
	var states []string
	var ready int
	bus.Subscribe(domain.EventRecordingChanged, func(_ context.Context, e domain.Event) {
		mu.Lock()
		states = append(states, string(e.Payload))
		mu.Unlock()
	})
	bus.Subscribe(domain.EventTranscriptReady, func(context.Context, domain.Event) {
		mu.Lock()
		ready++
		mu.Unlock()
	})

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))
	bus.Close()

	assert.Equal(t, []string{
		`{"state":"recording"}`,
		`{"state":"transcribing"}`,
		`{"state":"idle"}`,
	}, states)
	assert.Equal(t, 1, ready)
}

func TestAudioAndTurnIndependent(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()
	prompts, err := NewPromptBuilder("m")
	require.NoError(t, err)
	p := &mockProvider{resp: reply("ok")}
	tc := NewTurnController(f.session, prompts, NewCompletionClient(p, logger.Discard()), NewErrorClassifier(), logger.Discard())
	require.NoError(t, f.session.SelectRole(ctx, domain.RoleCollaborator))

	// a turn sent while a transcription is in flight still completes
	f.session.SetPendingInput("mensagem digitada")
	f.transcriber.during = func() {
		assert.True(t, tc.Send(ctx))
	}

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))

	assert.Equal(t, 3, f.session.Store().Len())
	assert.Equal(t, "Olá", f.session.PendingInput())
}

// observeWhileBlocked runs observe from a second goroutine and fails the
// test if it does not return promptly.
func observeWhileBlocked(t *testing.T, observe func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		observe()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pipeline blocked while the recorder was busy")
	}
}

func TestAudioSlowRecorderStopDoesNotBlockReaders(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	f.recorder.onStop = func() {
		close(entered)
		<-release
	}

	require.NoError(t, f.pipeline.Start(ctx))
	stopped := make(chan error, 1)
	go func() { stopped <- f.pipeline.Stop(ctx) }()
	<-entered

	var (
		state domain.RecordingState
		field InputField
	)
	observeWhileBlocked(t, func() {
		state = f.pipeline.State()
		field = f.pipeline.InputField()
		_ = f.pipeline.Cancel(ctx)
		_ = f.pipeline.Toggle(ctx)
	})
	assert.Equal(t, domain.RecordingTranscribing, state)
	assert.Equal(t, InputField{Status: StatusTranscribing}, field)
	assert.Zero(t, f.recorder.canceled.Load(), "cancel is a no-op once stopping")

	close(release)
	require.NoError(t, <-stopped)
	assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
	assert.Equal(t, "Olá", f.session.PendingInput())
	assert.Equal(t, int32(1), f.recorder.stopped.Load())
}

func TestAudioSlowRecorderStartDoesNotBlockReaders(t *testing.T) {
	f := newAudioFixture(nil)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	f.recorder.onStart = func() {
		close(entered)
		<-release
	}

	started := make(chan error, 1)
	go func() { started <- f.pipeline.Start(ctx) }()
	<-entered

	observeWhileBlocked(t, func() {
		assert.Equal(t, domain.RecordingIdle, f.pipeline.State())
		assert.NoError(t, f.pipeline.Start(ctx), "second start is ignored")
		_ = f.pipeline.InputField()
	})

	close(release)
	require.NoError(t, <-started)
	assert.Equal(t, domain.RecordingActive, f.pipeline.State())
	assert.Equal(t, int32(1), f.recorder.started.Load())
}
