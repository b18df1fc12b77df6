package ports

import "context"

// Feed is a live frame source obtained from a CameraDevice.
type Feed interface {
	Frame(ctx context.Context) ([]byte, error)
	Close() error
}

// CameraDevice opens feeds. Open fails with domain.ErrDeviceUnavailable when
// the device is missing or access is denied.
type CameraDevice interface {
	Open(ctx context.Context) (Feed, error)
}

// Capture owns at most one live feed at a time.
type Capture interface {
	Start(ctx context.Context) (Feed, error)
	CaptureStill(ctx context.Context) ([]byte, error)
	Stop()
}
