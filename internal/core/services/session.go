package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Detection and playlist outcomes reported to the observer.
const (
	outcomeOK            = "ok"
	outcomeCaptureFailed = "capture_failed"
	outcomeFailed        = "failed"
	outcomeStale         = "stale"
)

// PlaylistSource resolves a mood into a playlist.
type PlaylistSource interface {
	Find(ctx context.Context, mood string) (domain.PlaylistResult, error)
}

// CuePlayer plays and cancels mood feedback cues.
type CuePlayer interface {
	PlayCue(ctx context.Context, label string)
	Cancel()
}

// SessionDeps are the collaborators a Session drives.
type SessionDeps struct {
	Camera     ports.Capture
	Classifier ports.MoodClassifier
	Playlists  PlaylistSource
	Feedback   CuePlayer
	Player     ports.AudioSink
	Moods      ports.MoodStore
	Observer   ports.PipelineObserver
	Logger     *zap.Logger
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID                string
	Step              domain.Step
	Mood              *domain.MoodResult
	Emoji             string
	Playlist          *domain.PlaylistResult
	CurrentTrackIndex int
	CurrentTrack      *domain.Track
	Outcome           string
	Busy              bool
	Err               error
}

// Session walks one user through landing, capture, detection, result and
// playlist. All transitions are serialized; detection and playlist
// resolution run without holding the lock and their results are dropped if
// the session moved on in the meantime.
type Session struct {
	id   string
	deps SessionDeps

	mu           sync.Mutex
	step         domain.Step
	mood         *domain.MoodResult
	emoji        string
	playlist     *domain.PlaylistResult
	currentTrack int
	outcome      string
	lastErr      error
	epoch        uint64
	resolving    bool
}

func NewSession(deps SessionDeps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	id := uuid.NewString()
	deps.Logger = deps.Logger.With(zap.String("session_id", id))
	return &Session{id: id, deps: deps, step: domain.StepLanding}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Start opens the camera and moves from Landing to Capturing. When the
// camera cannot be opened the session stays on Landing.
func (s *Session) Start(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != domain.StepLanding {
		return s.snapshotLocked(), s.invalidLocked("start")
	}
	if _, err := s.deps.Camera.Start(ctx); err != nil {
		s.lastErr = err
		s.deps.Logger.Warn("camera start failed", zap.Error(err))
		return s.snapshotLocked(), err
	}
	s.lastErr = nil
	s.step = domain.StepCapturing
	return s.snapshotLocked(), nil
}

// Detect captures a still, stops the camera and classifies the frame. On
// success the mood is revealed with its feedback cue. On classifier failure
// the session returns to Capturing with the camera reopened, or to Landing
// when the camera cannot be reopened. The session reports busy while the
// capture and classification run.
func (s *Session) Detect(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	switch s.step {
	case domain.StepDetecting:
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, domain.ErrBusy
	case domain.StepCapturing:
	default:
		err := s.invalidLocked("detect")
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}

	s.step = domain.StepDetecting
	s.lastErr = nil
	epoch := s.epoch
	s.mu.Unlock()

	frame, captureErr := s.deps.Camera.CaptureStill(ctx)

	s.mu.Lock()
	if s.epoch != epoch || s.step != domain.StepDetecting {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.deps.Observer.ObserveDetection(outcomeStale)
		return snap, domain.ErrStale
	}
	if captureErr != nil {
		s.lastErr = captureErr
		s.step = domain.StepCapturing
		s.deps.Observer.ObserveDetection(outcomeCaptureFailed)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, captureErr
	}
	s.deps.Camera.Stop()
	s.mu.Unlock()

	result, classifyErr := s.deps.Classifier.Classify(ctx, frame)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.step != domain.StepDetecting {
		s.deps.Logger.Info("discarding late classification", zap.String("label", result.Label))
		s.deps.Observer.ObserveDetection(outcomeStale)
		return s.snapshotLocked(), domain.ErrStale
	}

	if classifyErr != nil {
		s.lastErr = classifyErr
		s.deps.Observer.ObserveDetection(outcomeFailed)
		s.deps.Logger.Warn("mood detection failed", zap.Error(classifyErr))
		if _, err := s.deps.Camera.Start(context.WithoutCancel(ctx)); err != nil {
			// Without a feed Capturing is a dead end.
			s.deps.Logger.Warn("camera restart failed", zap.Error(err))
			s.step = domain.StepLanding
			return s.snapshotLocked(), classifyErr
		}
		s.step = domain.StepCapturing
		return s.snapshotLocked(), classifyErr
	}

	s.mood = &result
	s.emoji = s.emojiFor(ctx, result.Label)
	s.step = domain.StepResult
	s.deps.Observer.ObserveDetection(outcomeOK)
	s.deps.Logger.Info("mood detected", zap.String("label", result.Label))
	s.deps.Feedback.PlayCue(ctx, result.Label)
	return s.snapshotLocked(), nil
}

// ProceedToPlaylist resolves a playlist for the detected mood. NoResults is
// a valid outcome: the session moves to Playlist with nothing to show.
// Other failures keep the session on Result so the user can retry.
func (s *Session) ProceedToPlaylist(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.step == domain.StepResult && s.resolving {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, domain.ErrBusy
	}
	if s.step != domain.StepResult || s.mood == nil {
		err := s.invalidLocked("proceed")
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.resolving = true
	s.lastErr = nil
	epoch := s.epoch
	label := s.mood.Label
	s.mu.Unlock()

	result, findErr := s.deps.Playlists.Find(ctx, label)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch || s.step != domain.StepResult {
		s.deps.Logger.Info("discarding late playlist", zap.String("mood", label))
		s.deps.Observer.ObservePlaylist(outcomeStale)
		return s.snapshotLocked(), domain.ErrStale
	}
	s.resolving = false

	switch {
	case errors.Is(findErr, domain.ErrNoResults):
		s.deps.Feedback.Cancel()
		s.playlist = nil
		s.currentTrack = 0
		s.outcome = domain.OutcomeNoResults
		s.step = domain.StepPlaylist
		s.deps.Observer.ObservePlaylist(domain.OutcomeNoResults)
		return s.snapshotLocked(), nil
	case findErr != nil:
		s.lastErr = findErr
		s.deps.Observer.ObservePlaylist(outcomeFailed)
		s.deps.Logger.Warn("playlist resolution failed", zap.String("mood", label), zap.Error(findErr))
		return s.snapshotLocked(), findErr
	}

	s.deps.Feedback.Cancel()
	s.playlist = &result
	s.currentTrack = 0
	s.step = domain.StepPlaylist
	if len(result.Tracks) == 0 {
		s.outcome = domain.OutcomeEmptyPlaylist
		s.deps.Observer.ObservePlaylist(domain.OutcomeEmptyPlaylist)
		return s.snapshotLocked(), nil
	}
	s.outcome = domain.OutcomeReady
	s.deps.Observer.ObservePlaylist(outcomeOK)
	s.playLocked(ctx, 0)
	return s.snapshotLocked(), nil
}

// SelectTrack makes index the current track and auditions it. Out-of-range
// indexes and calls outside the Playlist step change nothing.
func (s *Session) SelectTrack(ctx context.Context, index int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != domain.StepPlaylist || s.playlist == nil {
		return s.snapshotLocked(), s.invalidLocked("select track")
	}
	if _, ok := s.playlist.TrackAt(index); !ok {
		return s.snapshotLocked(), domain.NewError(domain.ErrInvalidTransition, "select track", nil).
			WithDetail(fmt.Sprintf("index %d out of range", index))
	}
	s.currentTrack = index
	s.playLocked(ctx, index)
	return s.snapshotLocked(), nil
}

// Recapture returns from Result or Playlist to a live camera.
func (s *Session) Recapture(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != domain.StepResult && s.step != domain.StepPlaylist {
		return s.snapshotLocked(), s.invalidLocked("recapture")
	}
	s.releaseLocked()

	if _, err := s.deps.Camera.Start(ctx); err != nil {
		s.step = domain.StepLanding
		s.lastErr = err
		return s.snapshotLocked(), err
	}
	s.step = domain.StepCapturing
	return s.snapshotLocked(), nil
}

// Reset returns to Landing from any step, releasing the camera and all
// audio. Work still in flight is discarded when it completes.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	s.deps.Camera.Stop()
	s.step = domain.StepLanding
	s.deps.Logger.Debug("session reset")
	return s.snapshotLocked()
}

// releaseLocked invalidates in-flight work, silences audio and forgets
// everything derived from the last detection.
func (s *Session) releaseLocked() {
	s.epoch++
	s.deps.Feedback.Cancel()
	if err := s.deps.Player.Stop(); err != nil {
		s.deps.Logger.Warn("preview stop failed", zap.Error(err))
	}
	s.mood = nil
	s.emoji = ""
	s.playlist = nil
	s.currentTrack = 0
	s.outcome = ""
	s.lastErr = nil
	s.resolving = false
}

func (s *Session) playLocked(ctx context.Context, index int) {
	track, ok := s.playlist.TrackAt(index)
	if !ok {
		return
	}
	if !track.HasPreview() {
		if err := s.deps.Player.Stop(); err != nil {
			s.deps.Logger.Warn("preview stop failed", zap.Error(err))
		}
		s.deps.Logger.Info("track has no preview", zap.String("track_id", track.ID))
		return
	}
	if err := s.deps.Player.Play(ctx, track.PreviewURL); err != nil {
		s.deps.Logger.Warn("preview playback failed", zap.String("track_id", track.ID), zap.Error(err))
	}
}

func (s *Session) emojiFor(ctx context.Context, label string) string {
	if s.deps.Moods == nil {
		return domain.UnknownProfile(label).DisplayEmoji()
	}
	profile, err := s.deps.Moods.Profile(ctx, label)
	if err != nil {
		return domain.UnknownProfile(label).DisplayEmoji()
	}
	return profile.DisplayEmoji()
}

func (s *Session) invalidLocked(op string) error {
	return domain.NewError(domain.ErrInvalidTransition, op, nil).WithDetail("session is " + string(s.step))
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:                s.id,
		Step:              s.step,
		Emoji:             s.emoji,
		CurrentTrackIndex: s.currentTrack,
		Outcome:           s.outcome,
		Busy:              s.step == domain.StepDetecting || s.resolving,
		Err:               s.lastErr,
	}
	if s.mood != nil {
		mood := *s.mood
		snap.Mood = &mood
	}
	if s.playlist != nil {
		pl := domain.PlaylistResult{Info: s.playlist.Info, Tracks: make([]domain.Track, len(s.playlist.Tracks))}
		copy(pl.Tracks, s.playlist.Tracks)
		snap.Playlist = &pl
		if track, ok := pl.TrackAt(s.currentTrack); ok {
			snap.CurrentTrack = &track
		}
	}
	return snap
}

type nopObserver struct{}

func (nopObserver) ObserveDetection(string) {}
func (nopObserver) ObservePlaylist(string)  {}
