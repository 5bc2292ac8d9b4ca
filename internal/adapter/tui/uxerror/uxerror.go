// Package uxerror translates audio errors into short status-bar notices.
// Completion failures never reach it: they become chat replies upstream.
package uxerror

import (
	"errors"
	"os/exec"
	"strings"

	"peora/internal/domain"
)

// Notice is a user-facing summary of a failure.
type Notice struct {
	Title string // short Portuguese heading for the status bar
	Hint  string // optional recovery suggestion
	Raw   string // original error text (for logs)
}

// String joins title and hint for single-line display.
func (n Notice) String() string {
	if n.Hint == "" {
		return n.Title
	}
	return n.Title + " (" + n.Hint + ")"
}

type errorPattern struct {
	match func(err error) bool
	title string
	hint  string
}

var patterns = []errorPattern{
	{
		match: func(err error) bool { return errors.Is(err, exec.ErrNotFound) },
		title: "Gravador não encontrado",
		hint:  "instale o ffmpeg ou ajuste recorder.command",
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrEmptyAudio) },
		title: "Nenhum áudio capturado",
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrRateLimit) },
		title: "Limite de transcrição atingido",
		hint:  "aguarde alguns minutos",
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrAuthInvalid) },
		title: "Chave da API de transcrição inválida",
		hint:  "verifique PEORA_TRANSCRIPTION_API_KEY",
	},
	{
		match: containsAny("connection refused", "dial tcp", "no such host"),
		title: "Sem conexão com o serviço de transcrição",
	},
	{
		match: containsAny("deadline exceeded", "timeout"),
		title: "A transcrição demorou demais",
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrRecorder) },
		title: "Falha no gravador de áudio",
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrTranscription) },
		title: "Não foi possível transcrever o áudio",
	},
}

// Humanize converts a raw error into a Notice.
func Humanize(err error) Notice {
	if err == nil {
		return Notice{}
	}
	for _, p := range patterns {
		if p.match(err) {
			return Notice{Title: p.title, Hint: p.hint, Raw: err.Error()}
		}
	}
	return Notice{Title: "Erro no áudio", Raw: err.Error()}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}
