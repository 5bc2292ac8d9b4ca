package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness and returns a *ValidationError
// listing every problem found. Empty API keys are accepted.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLLM(cfg, ve)
	validateTranscription(cfg, ve)
	validateRecorder(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateLLM(cfg *Config, ve *ValidationError) {
	p := cfg.LLM.Provider
	if p.Name == "" {
		ve.Add("llm.provider.name must not be empty")
	}
	validateURL("llm.provider.base_url", p.BaseURL, ve)
	if p.Model == "" {
		ve.Add("llm.provider.model must not be empty")
	}
	if p.RespTimeout < 0 || p.ConnTimeout < 0 {
		ve.Add("llm.provider timeouts must be >= 0")
	}
	if p.RequestsPerMinute < 0 {
		ve.Add("llm.provider.requests_per_minute must be >= 0")
	}
	if cb := cfg.LLM.CircuitBreaker; cb.Enabled {
		if cb.MaxFailures == 0 {
			ve.Add("llm.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if cb.Timeout <= 0 {
			ve.Add("llm.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
}

func validateTranscription(cfg *Config, ve *ValidationError) {
	t := cfg.Transcription
	validateURL("transcription.base_url", t.BaseURL, ve)
	if t.Model == "" {
		ve.Add("transcription.model must not be empty")
	}
	if t.Filename == "" {
		ve.Add("transcription.filename must not be empty")
	}
	if t.ContentType == "" {
		ve.Add("transcription.content_type must not be empty")
	}
	if t.RequestsPerMinute < 0 {
		ve.Add("transcription.requests_per_minute must be >= 0")
	}
}

func validateRecorder(cfg *Config, ve *ValidationError) {
	r := cfg.Recorder
	if r.Command == "" {
		ve.Add("recorder.command must not be empty")
	}
	found := false
	for _, a := range r.Args {
		if strings.Contains(a, "{output}") {
			found = true
			break
		}
	}
	if !found {
		ve.Add("recorder.args must contain the {output} placeholder")
	}
	if r.StopTimeout <= 0 {
		ve.Add("recorder.stop_timeout must be > 0")
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if f := cfg.Logger.Format; f != "text" && f != "json" {
		ve.Add("logger.format %q is invalid (want: text, json)", f)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	if e := cfg.Tracer.Exporter; e != "stdout" && e != "noop" {
		ve.Add("tracer.exporter %q is invalid (want: stdout, noop)", e)
	}
}

func validateURL(field, raw string, ve *ValidationError) {
	if raw == "" {
		ve.Add("%s must not be empty", field)
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("%s %q must be an absolute http(s) URL", field, raw)
	}
}
