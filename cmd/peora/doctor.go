package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"peora/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

func runDoctor() error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Chat API key", Fn: checkChatAPIKey},
		{Name: "Transcription API key", Fn: checkTranscriptionAPIKey},
		{Name: "Recorder", Fn: checkRecorder},
		{Name: "Temp dir", Fn: checkTempDir},
		{Name: "Endpoint", Fn: checkEndpoint},
	}

	fmt.Println("peora doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports load errors. A missing file only warns: defaults
// and environment variables are enough to run.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check config.yaml syntax and PEORA_* variables",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s not found, using defaults and environment", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// checkChatAPIKey warns rather than fails: without a key every turn is
// answered with the generic error reply.
func checkChatAPIKey(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	if cfg.LLM.Provider.APIKey == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no chat API key, replies will fail with an authentication error",
			Fix:     "Set PEORA_LLM_API_KEY or llm.provider.api_key",
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("API key configured for %s", cfg.LLM.Provider.Name)}
}

func checkTranscriptionAPIKey(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	if cfg.Transcription.APIKey == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no transcription API key, voice input will not work",
			Fix:     "Set PEORA_TRANSCRIPTION_API_KEY or transcription.api_key",
		}
	}
	return CheckResult{Status: StatusPass, Message: "transcription API key configured"}
}

// checkRecorder verifies the capture command is on PATH.
func checkRecorder(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	path, err := exec.LookPath(cfg.Recorder.Command)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%q not found, voice input will not work", cfg.Recorder.Command),
			Fix:     "Install ffmpeg or set recorder.command",
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("using %s", path)}
}

// checkTempDir verifies recordings can be written.
func checkTempDir(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	f, err := os.CreateTemp(cfg.Recorder.TempDir, "peora-doctor-*")
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot write recordings: %v", err),
			Fix:     "Set recorder.temp_dir to a writable directory",
		}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return CheckResult{Status: StatusPass, Message: "recordings directory is writable"}
}

// checkEndpoint tests that the completion base URL answers at all.
func checkEndpoint(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	endpoint := strings.TrimRight(cfg.LLM.Provider.BaseURL, "/") + "/models"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot reach %s: %v", endpoint, err),
			Fix:     "Check your internet connection and llm.provider.base_url",
		}
	}
	resp.Body.Close()

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s reachable (latency: %dms)", cfg.LLM.Provider.Name, latency.Milliseconds()),
	}
}
