package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/ewilliams-labs/momu/internal/core/ports"
	"go.uber.org/zap"
)

// CommandSink plays sources by spawning an external player (mpg123, ffplay,
// afplay) with the source appended to its arguments. Only one process runs
// at a time.
type CommandSink struct {
	mu      sync.Mutex
	command string
	args    []string
	proc    *exec.Cmd
	done    chan struct{}
	logger  *zap.Logger
}

var _ ports.AudioSink = (*CommandSink)(nil)

func NewCommandSink(command string, args []string, logger *zap.Logger) *CommandSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandSink{command: command, args: append([]string(nil), args...), logger: logger}
}

// Play stops whatever is playing and starts source. It returns once the
// player process has started.
func (s *CommandSink) Play(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	cmd := exec.Command(s.command, append(append([]string(nil), s.args...), source)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audio: start %s: %w", s.command, err)
	}
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	s.proc = cmd
	s.done = done
	s.logger.Debug("audio: playing", zap.String("source", source), zap.Int("pid", cmd.Process.Pid))
	return nil
}

// Stop kills the running player, if any, and waits for it to exit.
func (s *CommandSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *CommandSink) stopLocked() error {
	if s.proc == nil {
		return nil
	}
	proc, done := s.proc, s.done
	s.proc, s.done = nil, nil

	select {
	case <-done:
		return nil
	default:
	}
	if err := proc.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("audio: stop player: %w", err)
	}
	<-done
	return nil
}

// Playing reports whether a player process is still running.
func (s *CommandSink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// NopSink discards playback requests. It backs headless deployments.
type NopSink struct {
	Logger *zap.Logger
}

func (n NopSink) Play(_ context.Context, source string) error {
	if n.Logger != nil {
		n.Logger.Debug("audio: playback disabled", zap.String("source", source))
	}
	return nil
}

func (NopSink) Stop() error { return nil }
