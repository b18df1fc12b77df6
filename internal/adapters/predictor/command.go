package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// CommandClient runs a local classifier once per frame. The frame is written
// to a temporary file whose path is appended to Args; the command must print
// one JSON prediction on stdout.
type CommandClient struct {
	command string
	args    []string
	dir     string
	timeout time.Duration
	logger  *zap.Logger
}

var _ ports.MoodClassifier = (*CommandClient)(nil)

func NewCommandClient(command string, args []string, dir string, timeout time.Duration, logger *zap.Logger) *CommandClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandClient{
		command: command,
		args:    append([]string(nil), args...),
		dir:     dir,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *CommandClient) Classify(ctx context.Context, image []byte) (domain.MoodResult, error) {
	if len(image) == 0 {
		return domain.MoodResult{}, fmt.Errorf("predictor: empty image: %w", domain.ErrInvalidArgument)
	}

	path, err := writeFrame(image)
	if err != nil {
		return domain.MoodResult{}, fmt.Errorf("predictor: stage frame: %w", err)
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.args...), path)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = c.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		c.logger.Debug("classifier stderr", zap.String("output", stderr.String()))
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || stdout.Len() == 0 {
			return domain.MoodResult{}, domain.NewError(domain.ErrTransportFailure, "predictor command", runErr)
		}
		c.logger.Warn("classifier exited with error", zap.Int("exit_code", exitErr.ExitCode()))
	}

	return decodePrediction(stdout.Bytes())
}

func writeFrame(image []byte) (string, error) {
	f, err := os.CreateTemp("", "momu-frame-*"+mimetype.Detect(image).Extension())
	if err != nil {
		return "", err
	}
	if _, err := f.Write(image); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
