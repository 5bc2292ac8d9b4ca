package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"peora/internal/domain"
	"peora/internal/infra/tracer"
)

// Status lines shown under the input while the microphone is in use.
const (
	InputPlaceholder   = "Digite sua mensagem..."
	StatusRecording    = "Gravando áudio..."
	StatusTranscribing = "Transcrevendo áudio..."
)

// TranscriptionLanguage is the spoken language sent with every upload.
const TranscriptionLanguage = "pt"

// TranscriptionOptions are the configurable fields of every transcription
// upload.
type TranscriptionOptions struct {
	Model       string
	Filename    string
	ContentType string
}

// InputField is how the input box should be presented right now.
type InputField struct {
	Text        string
	Placeholder string
	Editable    bool
	Status      string
}

// AudioPipeline drives idle -> recording -> transcribing -> idle. The state
// machine is what keeps the microphone exclusive: a start while not idle
// is ignored.
type AudioPipeline struct {
	mu          sync.Mutex
	state       domain.RecordingState
	starting    bool
	recorder    domain.Recorder
	fetcher     domain.AudioFetcher
	transcriber domain.Transcriber
	session     *Session
	opts        TranscriptionOptions
	logger      *slog.Logger
}

func NewAudioPipeline(
	session *Session,
	recorder domain.Recorder,
	fetcher domain.AudioFetcher,
	transcriber domain.Transcriber,
	opts TranscriptionOptions,
	logger *slog.Logger,
) *AudioPipeline {
	return &AudioPipeline{
		session:     session,
		recorder:    recorder,
		fetcher:     fetcher,
		transcriber: transcriber,
		opts:        opts,
		logger:      logger.With("session_id", session.ID(), "component", "audio"),
	}
}

// State returns the current recording state.
func (p *AudioPipeline) State() domain.RecordingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Toggle stops an active recording or starts a new one. It does nothing
// while a transcription is in flight.
func (p *AudioPipeline) Toggle(ctx context.Context) error {
	switch p.State() {
	case domain.RecordingActive:
		return p.Stop(ctx)
	case domain.RecordingIdle:
		return p.Start(ctx)
	default:
		return nil
	}
}

// Start begins capturing. It is ignored unless the pipeline is idle. The
// recorder runs outside the lock; a second Start while one is in progress
// is ignored.
func (p *AudioPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != domain.RecordingIdle || p.starting {
		p.mu.Unlock()
		return nil
	}
	p.starting = true
	p.mu.Unlock()

	err := p.recorder.Start(ctx)

	p.mu.Lock()
	p.starting = false
	if err != nil {
		p.mu.Unlock()
		p.logger.Error("recorder start failed", "error", err)
		return domain.WrapOp("audio.start", fmt.Errorf("%w: %w", domain.ErrRecorder, err))
	}
	p.state = domain.RecordingActive
	p.mu.Unlock()

	p.logger.Debug("recording started")
	p.announce(ctx, domain.RecordingActive)
	return nil
}

// Cancel discards an active recording. It is ignored unless recording.
func (p *AudioPipeline) Cancel(ctx context.Context) error {
	p.mu.Lock()
	if p.state != domain.RecordingActive {
		p.mu.Unlock()
		return nil
	}
	p.state = domain.RecordingIdle
	p.mu.Unlock()

	err := p.recorder.Cancel(ctx)
	p.announce(ctx, domain.RecordingIdle)
	if err != nil {
		p.logger.Warn("recorder cancel failed", "error", err)
		return domain.WrapOp("audio.cancel", fmt.Errorf("%w: %w", domain.ErrRecorder, err))
	}
	return nil
}

// Stop finalizes the recording and, when audio was captured, transcribes it
// into the pending input. Stop blocks until the pipeline is idle again.
// The pipeline reports transcribing from the moment the recorder is asked
// to stop, so Toggle and Cancel are no-ops while the capture drains.
// Transcription failures leave the pending input untouched; they are logged
// and returned, never turned into chat messages.
func (p *AudioPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.state != domain.RecordingActive {
		p.mu.Unlock()
		return nil
	}
	p.state = domain.RecordingTranscribing
	p.mu.Unlock()
	p.announce(ctx, domain.RecordingTranscribing)

	handle, err := p.recorder.Stop(ctx)
	if err != nil || handle.IsZero() {
		p.setState(domain.RecordingIdle)
		p.announce(ctx, domain.RecordingIdle)
		if err != nil {
			p.logger.Error("recorder stop failed", "error", err)
			return domain.WrapOp("audio.stop", fmt.Errorf("%w: %w", domain.ErrRecorder, err))
		}
		p.logger.Debug("recording produced no audio")
		return nil
	}
	p.session.lockInput()

	transcript, err := p.transcribe(ctx, handle)

	p.session.unlockInput(transcript, err == nil)
	if relErr := p.fetcher.Release(handle); relErr != nil {
		p.logger.Warn("release audio failed", "uri", handle.URI, "error", relErr)
	}
	p.setState(domain.RecordingIdle)
	p.announce(ctx, domain.RecordingIdle)

	if err != nil {
		p.logger.Error("transcription failed", "error", err, "code", string(domain.ErrorCodeOf(err)))
		p.publish(ctx, domain.EventTranscriptionError, map[string]string{"error": err.Error()})
		return domain.WrapOp("audio.stop", err)
	}
	p.publish(ctx, domain.EventTranscriptReady, map[string]int{"len": len(transcript)})
	return nil
}

func (p *AudioPipeline) transcribe(ctx context.Context, h domain.AudioHandle) (_ string, err error) {
	ctx, span := tracer.StartSpan(ctx, "audio.transcribe")
	span.SetAttributes(tracer.StringAttr("session.id", p.session.ID()), tracer.StringAttr("model", p.opts.Model))
	defer func() { tracer.End(span, err) }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrTranscription, r)
		}
	}()

	data, err := p.fetcher.Fetch(ctx, h)
	if err != nil {
		if errors.Is(err, domain.ErrAudioFetch) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrAudioFetch, err)
	}
	if len(data) == 0 {
		return "", domain.ErrEmptyAudio
	}
	span.SetAttributes(tracer.IntAttr("audio.bytes", len(data)))

	text, err := p.transcriber.Transcribe(ctx, domain.TranscriptionRequest{
		Audio:       data,
		Filename:    p.opts.Filename,
		ContentType: p.opts.ContentType,
		Model:       p.opts.Model,
		Language:    TranscriptionLanguage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTranscription) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrTranscription, err)
	}
	return strings.TrimSpace(text), nil
}

// InputField describes the input box for the current session and pipeline
// state. While transcribing the box is blank, read-only and labelled.
func (p *AudioPipeline) InputField() InputField {
	state := p.State()
	snap := p.session.Snapshot()
	return inputFieldFor(state, snap)
}

func inputFieldFor(state domain.RecordingState, snap SessionSnapshot) InputField {
	switch {
	case state == domain.RecordingTranscribing || snap.Locked:
		return InputField{Status: StatusTranscribing}
	case state == domain.RecordingActive:
		return InputField{Text: snap.Pending, Placeholder: InputPlaceholder, Editable: true, Status: StatusRecording}
	default:
		return InputField{Text: snap.Pending, Placeholder: InputPlaceholder, Editable: true}
	}
}

func (p *AudioPipeline) setState(s domain.RecordingState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *AudioPipeline) announce(ctx context.Context, s domain.RecordingState) {
	p.publish(ctx, domain.EventRecordingChanged, map[string]string{"state": s.String()})
}

func (p *AudioPipeline) publish(ctx context.Context, t domain.EventType, payload any) {
	p.session.publish(ctx, t, payload)
}
