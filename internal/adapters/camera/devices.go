package camera

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
)

const maxFrameBytes = 16 << 20

// SnapshotDevice reads frames from an HTTP endpoint that serves the latest
// still, as IP cameras and webcam bridges do.
type SnapshotDevice struct {
	url        string
	httpClient *http.Client
}

func NewSnapshotDevice(url string, timeout time.Duration) *SnapshotDevice {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SnapshotDevice{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Open probes the endpoint once so a missing camera surfaces at start.
func (d *SnapshotDevice) Open(ctx context.Context) (ports.Feed, error) {
	if _, err := d.fetch(ctx); err != nil {
		return nil, domain.NewError(domain.ErrDeviceUnavailable, "snapshot camera", err).WithDetail(d.url)
	}
	return &snapshotFeed{device: d}, nil
}

func (d *SnapshotDevice) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
}

type snapshotFeed struct {
	device *SnapshotDevice
	closed atomic.Bool
}

func (f *snapshotFeed) Frame(ctx context.Context) ([]byte, error) {
	if f.closed.Load() {
		return nil, domain.NewError(domain.ErrNotReady, "snapshot camera", nil).WithDetail("feed closed")
	}
	frame, err := f.device.fetch(ctx)
	if err != nil {
		return nil, domain.NewError(domain.ErrNotReady, "snapshot camera", err)
	}
	return frame, nil
}

func (f *snapshotFeed) Close() error {
	f.closed.Store(true)
	return nil
}

// CommandDevice runs a capture tool that writes one encoded frame to stdout
// per invocation, e.g. fswebcam or ffmpeg.
type CommandDevice struct {
	command string
	args    []string
	timeout time.Duration
}

func NewCommandDevice(command string, args []string, timeout time.Duration) *CommandDevice {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CommandDevice{command: command, args: append([]string(nil), args...), timeout: timeout}
}

func (d *CommandDevice) Open(context.Context) (ports.Feed, error) {
	path, err := exec.LookPath(d.command)
	if err != nil {
		return nil, domain.NewError(domain.ErrDeviceUnavailable, "command camera", err)
	}
	return &commandFeed{path: path, args: d.args, timeout: d.timeout}, nil
}

type commandFeed struct {
	path    string
	args    []string
	timeout time.Duration
	closed  atomic.Bool
}

func (f *commandFeed) Frame(ctx context.Context) ([]byte, error) {
	if f.closed.Load() {
		return nil, domain.NewError(domain.ErrNotReady, "command camera", nil).WithDetail("feed closed")
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, f.path, f.args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, domain.NewError(domain.ErrNotReady, "command camera", err)
	}
	return stdout.Bytes(), nil
}

func (f *commandFeed) Close() error {
	f.closed.Store(true)
	return nil
}

// FileDevice serves the current contents of an image file. Useful for demos
// and for the detect command.
type FileDevice struct {
	path string
}

func NewFileDevice(path string) *FileDevice {
	return &FileDevice{path: path}
}

func (d *FileDevice) Open(context.Context) (ports.Feed, error) {
	if _, err := os.Stat(d.path); err != nil {
		return nil, domain.NewError(domain.ErrDeviceUnavailable, "file camera", err)
	}
	return &fileFeed{path: d.path}, nil
}

type fileFeed struct {
	path string
}

func (f *fileFeed) Frame(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, domain.NewError(domain.ErrNotReady, "file camera", err)
	}
	return data, nil
}

func (f *fileFeed) Close() error { return nil }

// UnavailableDevice is used when no camera is configured.
type UnavailableDevice struct{}

func (UnavailableDevice) Open(context.Context) (ports.Feed, error) {
	return nil, domain.NewError(domain.ErrDeviceUnavailable, "camera", nil).WithDetail("no camera configured")
}
