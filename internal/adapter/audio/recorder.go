// Package audio captures microphone input through an external command and
// serves the recorded files back to the transcription pipeline.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"peora/internal/domain"
	"peora/internal/infra/config"
)

// OutputPlaceholder is replaced in the recorder args by the capture path.
const OutputPlaceholder = "{output}"

const (
	defaultStopTimeout = 5 * time.Second
	stderrBufferMax    = 4096
)

// capture is one running recorder process.
type capture struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	path    string
	stderr  *ringBuffer
	done    chan struct{}
	waitErr error
}

// exited reports whether the process has already terminated.
func (c *capture) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// CommandRecorder implements domain.Recorder by running a capture command
// (ffmpeg by default) that writes to a temp file until interrupted.
type CommandRecorder struct {
	mu          sync.Mutex
	command     string
	args        []string
	tempDir     string
	ext         string
	contentType string
	stopTimeout time.Duration
	active      *capture
	logger      *slog.Logger
}

// NewCommandRecorder creates a recorder. filename only contributes its
// extension to the temp file name.
func NewCommandRecorder(cfg config.RecorderConfig, filename, contentType string, logger *slog.Logger) *CommandRecorder {
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	return &CommandRecorder{
		command:     cfg.Command,
		args:        cfg.Args,
		tempDir:     cfg.TempDir,
		ext:         filepath.Ext(filename),
		contentType: contentType,
		stopTimeout: stopTimeout,
		logger:      logger,
	}
}

// Start launches the capture command. Only one capture runs at a time.
func (r *CommandRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return fmt.Errorf("recorder: capture already running")
	}

	f, err := os.CreateTemp(r.tempDir, "peora-*"+r.ext)
	if err != nil {
		return fmt.Errorf("recorder: temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	// The process outlives the Start call; Stop and Cancel end it.
	cmdCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(cmdCtx, r.command, expandArgs(r.args, path)...)
	stderr := newRingBuffer(stderrBufferMax)
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		cancel()
		os.Remove(path)
		return fmt.Errorf("recorder: start %s: %w", r.command, err)
	}

	c := &capture{cmd: cmd, cancel: cancel, path: path, stderr: stderr, done: make(chan struct{})}
	go func() {
		c.waitErr = cmd.Wait()
		close(c.done)
	}()
	r.active = c

	r.logger.Debug("recorder started", "command", r.command, "path", path, "pid", cmd.Process.Pid)
	return nil
}

// Stop interrupts the capture and waits for the command to flush its
// output. A capture that produced no bytes yields a zero handle.
func (r *CommandRecorder) Stop(ctx context.Context) (domain.AudioHandle, error) {
	c := r.take()
	if c == nil {
		return domain.AudioHandle{}, domain.ErrNotRecording
	}

	exitedEarly := c.exited()
	if !exitedEarly {
		if err := interrupt(c.cmd.Process); err != nil {
			r.logger.Debug("recorder interrupt failed, killing", "error", err)
			c.cancel()
		}
		select {
		case <-c.done:
		case <-time.After(r.stopTimeout):
			r.logger.Warn("recorder did not stop in time, killing", "timeout", r.stopTimeout)
			c.cancel()
			<-c.done
		case <-ctx.Done():
			c.cancel()
			<-c.done
			os.Remove(c.path)
			return domain.AudioHandle{}, ctx.Err()
		}
	}
	c.cancel()

	info, err := os.Stat(c.path)
	if err != nil || info.Size() == 0 {
		os.Remove(c.path)
		if exitedEarly && c.waitErr != nil {
			return domain.AudioHandle{}, fmt.Errorf("recorder: %s exited: %w: %s",
				r.command, c.waitErr, strings.TrimSpace(c.stderr.String()))
		}
		r.logger.Debug("recorder produced no audio", "path", c.path)
		return domain.AudioHandle{}, nil
	}

	r.logger.Debug("recorder stopped", "path", c.path, "bytes", info.Size())
	return domain.AudioHandle{URI: c.path, ContentType: r.contentType}, nil
}

// Cancel kills the capture and discards its output.
func (r *CommandRecorder) Cancel(_ context.Context) error {
	c := r.take()
	if c == nil {
		return nil
	}
	c.cancel()
	<-c.done

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("recorder: discard %s: %w", c.path, err)
	}
	r.logger.Debug("recorder cancelled", "path", c.path)
	return nil
}

// Recording reports whether a capture is running.
func (r *CommandRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *CommandRecorder) take() *capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.active
	r.active = nil
	return c
}

// interrupt asks the process to finish writing. Platforms without SIGINT
// delivery report an error and the caller falls back to killing it.
func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func expandArgs(args []string, path string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, OutputPlaceholder, path)
	}
	return out
}

var _ domain.Recorder = (*CommandRecorder)(nil)
