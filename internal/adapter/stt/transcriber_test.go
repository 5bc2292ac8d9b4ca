package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peora/internal/domain"
	"peora/internal/infra/config"
	"peora/internal/infra/logger"
)

func newTestTranscriber(url string) *Transcriber {
	return New(config.TranscriptionConfig{
		BaseURL: url,
		APIKey:  "gsk-test",
		Model:   "whisper-large-v3-turbo",
		Timeout: 5 * time.Second,
	}, logger.Discard())
}

func TestTranscribeMultipartUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3-turbo", r.FormValue("model"))
		assert.Equal(t, "pt", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "audio.webm", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("fake-opus"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Quero regularizar meu afastamento  "}`))
	}))
	defer server.Close()

	text, err := newTestTranscriber(server.URL).Transcribe(context.Background(), domain.TranscriptionRequest{
		Audio:       []byte("fake-opus"),
		Filename:    "audio.webm",
		ContentType: "audio/webm",
	})
	require.NoError(t, err)
	assert.Equal(t, "Quero regularizar meu afastamento", text)
}

func TestTranscribeRequestOverridesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer server.Close()

	text, err := newTestTranscriber(server.URL).Transcribe(context.Background(), domain.TranscriptionRequest{
		Audio:    []byte("x"),
		Model:    "whisper-large-v3",
		Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestTranscribeRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached. Please try again in 2m5s.","type":"requests"}}`))
	}))
	defer server.Close()

	_, err := newTestTranscriber(server.URL).Transcribe(context.Background(), domain.TranscriptionRequest{Audio: []byte("x")})
	require.Error(t, err)

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.ErrorIs(t, err, domain.ErrRateLimit)
	assert.Contains(t, err.Error(), "try again in 2m")
	assert.Equal(t, int32(1), calls.Load(), "no automatic retries")
}

func TestTranscribeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestTranscriber(server.URL).Transcribe(context.Background(), domain.TranscriptionRequest{Audio: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestTranscribeCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":"late"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestTranscriber(server.URL).Transcribe(ctx, domain.TranscriptionRequest{Audio: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
