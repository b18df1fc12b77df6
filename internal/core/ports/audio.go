package ports

import (
	"context"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// AudioSink plays one source at a time. Play replaces whatever is playing.
type AudioSink interface {
	Play(ctx context.Context, source string) error
	Stop() error
}

// CueLibrary maps mood labels to short feedback clips.
type CueLibrary interface {
	Resolve(label string) (domain.Cue, error)
}
