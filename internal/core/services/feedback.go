package services

import (
	"context"
	"sync"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// DefaultCueMaxDuration bounds how long a feedback cue may play.
const DefaultCueMaxDuration = 2 * time.Second

// FeedbackPlayer plays the short cue for a revealed mood and force-stops it
// after a fixed bound. Playback failures are logged and never surface.
type FeedbackPlayer struct {
	sink        ports.AudioSink
	cues        ports.CueLibrary
	clock       clock.WithDelayedExecution
	maxDuration time.Duration
	logger      *zap.Logger

	mu         sync.Mutex
	timer      clock.Timer
	generation uint64
}

func NewFeedbackPlayer(sink ports.AudioSink, cues ports.CueLibrary, clk clock.WithDelayedExecution, maxDuration time.Duration, logger *zap.Logger) *FeedbackPlayer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if maxDuration <= 0 {
		maxDuration = DefaultCueMaxDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackPlayer{sink: sink, cues: cues, clock: clk, maxDuration: maxDuration, logger: logger}
}

// PlayCue starts the cue for label, replacing any cue already playing.
func (p *FeedbackPlayer) PlayCue(ctx context.Context, label string) {
	label = domain.NormalizeLabel(label)
	if label == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelTimerLocked()

	// The previous cue loses its force-stop here, so every early return
	// must silence the sink itself.
	cue, err := p.cues.Resolve(label)
	if err != nil {
		p.logger.Warn("feedback cue unavailable", zap.String("mood", label), zap.Error(err))
		p.stopSinkLocked()
		return
	}
	if err := p.sink.Play(ctx, cue.Source); err != nil {
		p.logger.Warn("feedback cue playback failed", zap.String("mood", label), zap.Error(err))
		p.stopSinkLocked()
		return
	}

	gen := p.generation
	p.timer = p.clock.AfterFunc(p.maxDuration, func() { p.expire(gen) })
}

// Cancel stops the current cue and its pending force-stop.
func (p *FeedbackPlayer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelTimerLocked()
	p.stopSinkLocked()
}

func (p *FeedbackPlayer) expire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A newer cue or a Cancel owns the sink now.
	if gen != p.generation || p.timer == nil {
		return
	}
	p.timer = nil
	p.stopSinkLocked()
}

func (p *FeedbackPlayer) stopSinkLocked() {
	if err := p.sink.Stop(); err != nil {
		p.logger.Warn("feedback cue stop failed", zap.Error(err))
	}
}

func (p *FeedbackPlayer) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.generation++
}
