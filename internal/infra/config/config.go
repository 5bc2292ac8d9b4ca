package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default endpoint and model identifiers (Groq's OpenAI-compatible API).
const (
	DefaultBaseURL            = "https://api.groq.com/openai/v1"
	DefaultChatModel          = "llama-3.3-70b-versatile"
	DefaultTranscriptionModel = "whisper-large-v3-turbo"
	DefaultLanguage           = "pt"
	DefaultAudioFilename      = "audio.webm"
	DefaultAudioContentType   = "audio/webm"
)

// Config is the top-level application configuration.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Recorder      RecorderConfig      `yaml:"recorder"`
	Logger        LoggerConfig        `yaml:"logger"`
	Tracer        TracerConfig        `yaml:"tracer"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	Provider       ProviderConfig       `yaml:"provider"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ProviderConfig holds settings for the OpenAI-compatible completion endpoint.
type ProviderConfig struct {
	Name              string        `yaml:"name"`
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	ConnTimeout       time.Duration `yaml:"conn_timeout"`
	RespTimeout       time.Duration `yaml:"resp_timeout"`
	Pool              PoolConfig    `yaml:"pool"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 = unlimited
}

// CircuitBreakerConfig holds circuit breaker settings for the completion provider.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// TranscriptionConfig holds speech-to-text endpoint settings.
// The API key is separate from the completion key.
type TranscriptionConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Filename          string        `yaml:"filename"`
	ContentType       string        `yaml:"content_type"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// RecorderConfig configures the external microphone capture command.
// Args may contain the {output} placeholder, replaced by the recording path.
type RecorderConfig struct {
	Command     string        `yaml:"command"`
	Args        []string      `yaml:"args"`
	TempDir     string        `yaml:"temp_dir"`
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Output   string `yaml:"output"` // file path for the stdout exporter; empty = stdout
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderConfig{
				Name:        "groq",
				BaseURL:     DefaultBaseURL,
				Model:       DefaultChatModel,
				ConnTimeout: 30 * time.Second,
				RespTimeout: 120 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Transcription: TranscriptionConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultTranscriptionModel,
			Filename:    DefaultAudioFilename,
			ContentType: DefaultAudioContentType,
			Timeout:     60 * time.Second,
		},
		Recorder: RecorderConfig{
			Command:     "ffmpeg",
			Args:        []string{"-loglevel", "error", "-y", "-f", "pulse", "-i", "default", "-c:a", "libopus", "{output}"},
			StopTimeout: 5 * time.Second,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "peora.log",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, the optional .env file, applies env var
// overrides and decrypts secrets. A missing config file is not an error.
// Missing API keys are not an error either: they surface later as an
// authentication failure on the first request.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvPath()); err != nil {
		return nil, err
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults + environment only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		if err := validatePermissions(absPath); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("PEORA_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dotEnvPath() string {
	if v := os.Getenv("PEORA_ENV_FILE"); v != "" {
		return v
	}
	return ".env"
}

// loadDotEnv populates the process environment from a .env file without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides maps PEORA_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PEORA_LLM_API_KEY"); v != "" {
		cfg.LLM.Provider.APIKey = v
	}
	if v := os.Getenv("PEORA_LLM_BASE_URL"); v != "" {
		cfg.LLM.Provider.BaseURL = v
	}
	if v := os.Getenv("PEORA_LLM_MODEL"); v != "" {
		cfg.LLM.Provider.Model = v
	}
	if v := os.Getenv("PEORA_LLM_RESP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LLM.Provider.RespTimeout = d
		}
	}
	if v := os.Getenv("PEORA_LLM_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LLM.Provider.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("PEORA_LLM_CIRCUIT_BREAKER_ENABLED"); v == "true" {
		cfg.LLM.CircuitBreaker.Enabled = true
	} else if v == "false" {
		cfg.LLM.CircuitBreaker.Enabled = false
	}

	if v := os.Getenv("PEORA_TRANSCRIPTION_API_KEY"); v != "" {
		cfg.Transcription.APIKey = v
	}
	if v := os.Getenv("PEORA_TRANSCRIPTION_BASE_URL"); v != "" {
		cfg.Transcription.BaseURL = v
	}
	if v := os.Getenv("PEORA_TRANSCRIPTION_MODEL"); v != "" {
		cfg.Transcription.Model = v
	}

	if v := os.Getenv("PEORA_RECORDER_COMMAND"); v != "" {
		cfg.Recorder.Command = v
	}
	if v := os.Getenv("PEORA_RECORDER_ARGS"); v != "" {
		cfg.Recorder.Args = strings.Fields(v)
	}

	if v := os.Getenv("PEORA_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("PEORA_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("PEORA_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("PEORA_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("PEORA_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("PEORA_TRACER_OUTPUT"); v != "" {
		cfg.Tracer.Output = v
	}
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
