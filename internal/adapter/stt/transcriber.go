// Package stt implements domain.Transcriber against an OpenAI-compatible
// audio transcription endpoint.
package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"peora/internal/adapter/llm"
	"peora/internal/domain"
	"peora/internal/infra/config"
	"peora/internal/infra/tracer"
)

const providerName = "groq"

// Transcriber uploads recorded audio to {base_url}/audio/transcriptions.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a Transcriber. An empty API key is sent as-is and rejected by
// the endpoint.
func New(cfg config.TranscriptionConfig, logger *slog.Logger) *Transcriber {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultTranscriptionModel
	}

	httpClient := llm.NewHTTPClient(config.ProviderConfig{RespTimeout: cfg.Timeout})

	return &Transcriber{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		model:    model,
		language: config.DefaultLanguage,
		limiter:  llm.NewLimiter(cfg.RequestsPerMinute),
		logger:   logger,
	}
}

// Transcribe sends one multipart upload and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (_ string, err error) {
	model := req.Model
	if model == "" {
		model = t.model
	}
	language := req.Language
	if language == "" {
		language = t.language
	}
	filename := req.Filename
	if filename == "" {
		filename = config.DefaultAudioFilename
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = config.DefaultAudioContentType
	}

	ctx, span := tracer.StartSpan(ctx, "stt.transcribe",
		trace.WithAttributes(
			tracer.StringAttr("stt.model", model),
			tracer.StringAttr("stt.language", language),
			tracer.IntAttr("stt.audio_bytes", len(req.Audio)),
		),
	)
	defer func() { tracer.End(span, err) }()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("client throttle wait: %w", err)
		}
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(req.Audio), filename, contentType),
		Model: openai.AudioModel(model),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	start := time.Now()
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", mapAPIError(err))
	}

	text := strings.TrimSpace(resp.Text)
	t.logger.Debug("transcription completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}

// mapAPIError converts SDK status errors into *domain.ProviderError so they
// classify the same way as completion failures.
func mapAPIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	mapped := llm.MapHTTPError(providerName, apiErr.StatusCode, []byte(apiErr.RawJSON()))
	var pe *domain.ProviderError
	if errors.As(mapped, &pe) && apiErr.Message != "" {
		pe.Message = apiErr.Message
		pe.Type = apiErr.Type
	}
	return mapped
}

var _ domain.Transcriber = (*Transcriber)(nil)
