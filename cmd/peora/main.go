package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"peora/internal/adapter/audio"
	"peora/internal/adapter/llm"
	"peora/internal/adapter/stt"
	"peora/internal/adapter/tui/chat"
	"peora/internal/infra/config"
	"peora/internal/infra/logger"
	"peora/internal/infra/tracer"
	"peora/internal/usecase"
	"peora/internal/usecase/eventbus"
)

func main() {
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") && !isHelp(os.Args[1]) {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage()
	case "doctor":
		if err := runDoctor(); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	case "encrypt":
		if err := runEncrypt(); err != nil {
			fmt.Fprintf(os.Stderr, "encrypt: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'peora --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func isHelp(arg string) bool {
	return arg == "--help" || arg == "-h"
}

func showUsage() {
	fmt.Println(`peora - assistente de RH para licenças e INSS

USAGE:
    peora [COMMAND] [FLAGS]

COMMANDS:
    doctor      Check config, API keys, recorder and endpoints
    encrypt     Encrypt a secret for config.yaml (reads stdin, needs PEORA_CONFIG_KEY)

    (no command) - Start the chat

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml, or PEORA_CONFIG)

CONFIGURATION:
    Config file: ./config.yaml (optional)
    Dotenv:      ./.env (optional, or PEORA_ENV_FILE)
    Environment: PEORA_* variables override the config file

KEYS:
    Enter        send message
    Alt+Enter    new line
    Ctrl+R       start/stop voice recording
    Esc          discard recording
    Ctrl+C       quit`)
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("PEORA_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	// 3. Event bus & session
	bus := eventbus.New(logger.Component(log, "eventbus"))
	defer bus.Close()

	session := usecase.NewSession(bus)
	log = logger.WithSession(log, session.ID())

	// 4. Conversation
	prompts, err := usecase.NewPromptBuilder(cfg.LLM.Provider.Model)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	provider := llm.New(cfg.LLM, logger.Component(log, "llm"))
	turns := usecase.NewTurnController(
		session,
		prompts,
		usecase.NewCompletionClient(provider, logger.Component(log, "completion")),
		usecase.NewErrorClassifier(),
		logger.Component(log, "turn"),
	)

	// 5. Voice input
	recorder := audio.NewCommandRecorder(cfg.Recorder, cfg.Transcription.Filename, cfg.Transcription.ContentType,
		logger.Component(log, "recorder"))
	pipeline := usecase.NewAudioPipeline(
		session,
		recorder,
		audio.FileFetcher{},
		stt.New(cfg.Transcription, logger.Component(log, "stt")),
		usecase.TranscriptionOptions{
			Model:       cfg.Transcription.Model,
			Filename:    cfg.Transcription.Filename,
			ContentType: cfg.Transcription.ContentType,
		},
		log,
	)

	log.Info("peora starting",
		"provider", provider.Name(),
		"model", cfg.LLM.Provider.Model,
		"transcription_model", cfg.Transcription.Model,
	)

	// 6. TUI
	err = chat.Run(ctx, chat.Deps{
		Session:   session,
		Turns:     turns,
		Audio:     pipeline,
		Logger:    logger.Component(log, "tui"),
		ModelName: cfg.LLM.Provider.Model,
	}, bus)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	log.Info("peora stopped")
	return nil
}

// runEncrypt reads one secret from stdin and prints it as an enc: value.
func runEncrypt() error {
	passphrase := os.Getenv("PEORA_CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("PEORA_CONFIG_KEY is not set")
	}

	fmt.Fprint(os.Stderr, "secret: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return fmt.Errorf("empty secret")
	}

	sealed, err := config.EncryptValue(secret, passphrase)
	if err != nil {
		return err
	}
	fmt.Println(config.EncryptedPrefix + sealed)
	return nil
}
