// Package camera owns the live capture feed and snapshots still frames
// from it.
package camera

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Adapter holds at most one open feed. Start is idempotent and Stop is safe
// to call at any time.
type Adapter struct {
	mu     sync.Mutex
	device ports.CameraDevice
	feed   ports.Feed
	logger *zap.Logger
}

var _ ports.Capture = (*Adapter)(nil)

func NewAdapter(device ports.CameraDevice, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{device: device, logger: logger}
}

// Start opens the device, or returns the feed that is already open.
func (a *Adapter) Start(ctx context.Context) (ports.Feed, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.feed != nil {
		return a.feed, nil
	}
	if a.device == nil {
		return nil, domain.NewError(domain.ErrDeviceUnavailable, "camera start", nil).WithDetail("no device configured")
	}

	feed, err := a.device.Open(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, domain.NewError(domain.ErrDeviceUnavailable, "camera start", err)
	}
	a.feed = feed
	a.logger.Info("camera feed started")
	return feed, nil
}

// CaptureStill snapshots the current frame. It fails with domain.ErrNotReady
// when no feed is open or the feed has not produced an image yet.
func (a *Adapter) CaptureStill(ctx context.Context) ([]byte, error) {
	// Frame may block on a device; Stop must not wait behind it.
	a.mu.Lock()
	feed := a.feed
	a.mu.Unlock()

	if feed == nil {
		return nil, domain.NewError(domain.ErrNotReady, "camera capture", nil).WithDetail("no active feed")
	}

	frame, err := feed.Frame(ctx)
	if err != nil {
		var pe *domain.PipelineError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, domain.NewError(domain.ErrNotReady, "camera capture", err)
	}
	if len(frame) == 0 {
		return nil, domain.NewError(domain.ErrNotReady, "camera capture", nil).WithDetail("empty frame")
	}
	if mt := mimetype.Detect(frame); !strings.HasPrefix(mt.String(), "image/") {
		return nil, domain.NewError(domain.ErrNotReady, "camera capture", nil).WithDetail("frame is " + mt.String())
	}
	return frame, nil
}

// Stop closes the feed if one is open.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.feed == nil {
		return
	}
	if err := a.feed.Close(); err != nil {
		a.logger.Warn("camera feed close failed", zap.Error(err))
	}
	a.feed = nil
	a.logger.Info("camera feed stopped")
}

// Active reports whether a feed is open.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.feed != nil
}
