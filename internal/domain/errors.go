package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrInvalidRole         = fmt.Errorf("invalid role")
	ErrRoleAlreadySelected = fmt.Errorf("role already selected")
	ErrConfigLoad          = fmt.Errorf("failed to load configuration")
	ErrDecryption          = fmt.Errorf("decryption failed")

	// Provider errors.
	ErrProviderError   = fmt.Errorf("provider error")
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
	ErrContextOverflow = fmt.Errorf("context window exceeded")
	ErrCircuitOpen     = fmt.Errorf("provider circuit open")

	// Audio pipeline errors.
	ErrRecorder      = fmt.Errorf("recorder failure")
	ErrNotRecording  = fmt.Errorf("no active recording")
	ErrEmptyAudio    = fmt.Errorf("recorded audio is empty")
	ErrAudioFetch    = fmt.Errorf("audio fetch failed")
	ErrTranscription = fmt.Errorf("transcription failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Audio.Stop")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ProviderError is a failed request to a remote provider, annotated with the
// HTTP status and the message the provider attached.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Type       string
	Err        error // mapped sentinel (ErrRateLimit, ErrAuthInvalid, ...)
}

func (e *ProviderError) Error() string {
	sentinel := e.Err
	if sentinel == nil {
		sentinel = ErrProviderError
	}
	return fmt.Sprintf("%s: API error %d: %s", sentinel, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Status returns the HTTP status attached to the error.
func (e *ProviderError) Status() int { return e.StatusCode }

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrCircuitOpen)
}

// ErrorCode is a machine-parseable error category for logs and traces.
type ErrorCode string

const (
	CodeUnknown         ErrorCode = "UNKNOWN"
	CodeInvalidRole     ErrorCode = "INVALID_ROLE"
	CodeRoleSelected    ErrorCode = "ROLE_ALREADY_SELECTED"
	CodeConfigLoad      ErrorCode = "CONFIG_LOAD"
	CodeDecryption      ErrorCode = "DECRYPTION"
	CodeProviderError   ErrorCode = "PROVIDER_ERROR"
	CodeRateLimit       ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid     ErrorCode = "AUTH_INVALID"
	CodeContextOverflow ErrorCode = "CONTEXT_OVERFLOW"
	CodeCircuitOpen     ErrorCode = "CIRCUIT_OPEN"
	CodeRecorder        ErrorCode = "RECORDER"
	CodeNotRecording    ErrorCode = "NOT_RECORDING"
	CodeEmptyAudio      ErrorCode = "EMPTY_AUDIO"
	CodeAudioFetch      ErrorCode = "AUDIO_FETCH"
	CodeTranscription   ErrorCode = "TRANSCRIPTION"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
// Order matters: more specific sentinels come first because a ProviderError
// may wrap ErrRateLimit while also being reported as a transcription failure.
var errorCodeMap = []struct {
	err  error
	code ErrorCode
}{
	{ErrRateLimit, CodeRateLimit},
	{ErrAuthInvalid, CodeAuthInvalid},
	{ErrContextOverflow, CodeContextOverflow},
	{ErrCircuitOpen, CodeCircuitOpen},
	{ErrInvalidRole, CodeInvalidRole},
	{ErrRoleAlreadySelected, CodeRoleSelected},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrDecryption, CodeDecryption},
	{ErrRecorder, CodeRecorder},
	{ErrNotRecording, CodeNotRecording},
	{ErrEmptyAudio, CodeEmptyAudio},
	{ErrAudioFetch, CodeAudioFetch},
	{ErrTranscription, CodeTranscription},
	{ErrProviderError, CodeProviderError},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, e := range errorCodeMap {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return CodeProviderError
	}
	return CodeUnknown
}
