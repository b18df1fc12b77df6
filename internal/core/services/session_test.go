package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewilliams-labs/momu/internal/adapters/memory"
	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type sessionFixture struct {
	session    *Session
	camera     *mockCamera
	classifier *mockClassifier
	finder     *mockFinder
	cues       *mockCues
	player     *mockSink
	observer   *recordingObserver
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		camera:     &mockCamera{frame: []byte("frame")},
		classifier: &mockClassifier{result: domain.NewMoodResult("sad", nil)},
		finder:     &mockFinder{},
		cues:       &mockCues{},
		player:     &mockSink{},
		observer:   &recordingObserver{},
	}
	f.finder.result = playlistWith(3)
	f.session = NewSession(SessionDeps{
		Camera:     f.camera,
		Classifier: f.classifier,
		Playlists:  f.finder,
		Feedback:   f.cues,
		Player:     f.player,
		Moods:      memory.NewStore(),
		Observer:   f.observer,
		Logger:     zaptest.NewLogger(t),
	})
	return f
}

func playlistWith(n int) domain.PlaylistResult {
	res, _ := domain.NewPlaylistResult(domain.PlaylistCandidate{ID: "p1", Name: "Rainy Day"}, makeTracks(n))
	return res
}

// toResult drives a fresh fixture to the Result step.
func (f *sessionFixture) toResult(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.session.Start(ctx)
	require.NoError(t, err)
	_, err = f.session.Detect(ctx)
	require.NoError(t, err)
}

func TestSession_HappyPath(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StepLanding, snap.Step)
	assert.NotEmpty(t, snap.ID)

	snap, err := f.session.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCapturing, snap.Step)
	assert.True(t, f.camera.isActive())

	snap, err = f.session.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepResult, snap.Step)
	require.NotNil(t, snap.Mood)
	assert.Equal(t, "sad", snap.Mood.Label)
	assert.Equal(t, "😢", snap.Emoji)
	assert.False(t, f.camera.isActive(), "camera must be released once a still is taken")
	assert.Equal(t, []string{"sad"}, f.cues.playedLabels())

	snap, err = f.session.ProceedToPlaylist(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPlaylist, snap.Step)
	assert.Equal(t, domain.OutcomeReady, snap.Outcome)
	require.NotNil(t, snap.Playlist)
	assert.Equal(t, "p1", snap.Playlist.Info.ID)
	assert.Len(t, snap.Playlist.Tracks, 3)
	assert.Equal(t, 0, snap.CurrentTrackIndex)
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "t0", snap.CurrentTrack.ID)

	plays, _ := f.player.counts()
	assert.Equal(t, []string{"https://p.test/0.mp3"}, plays)
	assert.GreaterOrEqual(t, f.cues.cancels, 1, "cue must stop before the preview starts")
	assert.Equal(t, []string{"sad"}, f.finder.moods)
	assert.Equal(t, []string{outcomeOK}, f.observer.detections)
	assert.Equal(t, []string{outcomeOK}, f.observer.playlists)
}

func TestSession_ResetDiscardsLateClassification(t *testing.T) {
	f := newSessionFixture(t)
	f.classifier.entered = make(chan struct{}, 1)
	f.classifier.gate = make(chan struct{})
	ctx := context.Background()

	_, err := f.session.Start(ctx)
	require.NoError(t, err)

	type detectResult struct {
		snap Snapshot
		err  error
	}
	done := make(chan detectResult, 1)
	go func() {
		snap, err := f.session.Detect(ctx)
		done <- detectResult{snap, err}
	}()

	<-f.classifier.entered
	assert.True(t, f.session.Snapshot().Busy)

	snap := f.session.Reset()
	assert.Equal(t, domain.StepLanding, snap.Step)

	close(f.classifier.gate)
	res := <-done

	assert.ErrorIs(t, res.err, domain.ErrStale)
	final := f.session.Snapshot()
	assert.Equal(t, domain.StepLanding, final.Step)
	assert.Nil(t, final.Mood)
	assert.Empty(t, final.Emoji)
	assert.Empty(t, f.cues.playedLabels(), "no cue may play for a discarded result")
	assert.Equal(t, []string{outcomeStale}, f.observer.detections)
}

func TestSession_DetectWhileDetectingIsBusy(t *testing.T) {
	f := newSessionFixture(t)
	f.classifier.entered = make(chan struct{}, 1)
	f.classifier.gate = make(chan struct{})
	ctx := context.Background()

	_, err := f.session.Start(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.Detect(ctx)
		done <- err
	}()
	<-f.classifier.entered

	snap, err := f.session.Detect(ctx)
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, domain.StepDetecting, snap.Step)

	close(f.classifier.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.classifier.callCount())
	assert.Equal(t, domain.StepResult, f.session.Snapshot().Step)
}

func TestSession_ResetDuringCaptureIsNotBlocked(t *testing.T) {
	f := newSessionFixture(t)
	f.camera.entered = make(chan struct{}, 1)
	f.camera.gate = make(chan struct{})
	ctx := context.Background()

	_, err := f.session.Start(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.Detect(ctx)
		done <- err
	}()
	<-f.camera.entered

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StepDetecting, snap.Step)
	assert.True(t, snap.Busy)

	_, err = f.session.Detect(ctx)
	assert.ErrorIs(t, err, domain.ErrBusy)

	reset := make(chan Snapshot, 1)
	go func() { reset <- f.session.Reset() }()
	select {
	case snap = <-reset:
		assert.Equal(t, domain.StepLanding, snap.Step)
	case <-time.After(time.Second):
		t.Fatal("reset blocked behind a pending capture")
	}

	close(f.camera.gate)
	assert.ErrorIs(t, <-done, domain.ErrStale)
	assert.Equal(t, 0, f.classifier.callCount())
	assert.Equal(t, domain.StepLanding, f.session.Snapshot().Step)
	assert.Equal(t, []string{outcomeStale}, f.observer.detections)
}

func TestSession_CameraRestartFailureFallsBackToLanding(t *testing.T) {
	f := newSessionFixture(t)
	f.classifier.err = domain.NewError(domain.ErrTransportFailure, "predictor", nil)
	ctx := context.Background()

	_, err := f.session.Start(ctx)
	require.NoError(t, err)
	f.camera.setStartErr(domain.NewError(domain.ErrNotReady, "camera", nil))

	snap, err := f.session.Detect(ctx)
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
	assert.Equal(t, domain.StepLanding, snap.Step)
	assert.ErrorIs(t, snap.Err, domain.ErrTransportFailure)
	assert.False(t, f.camera.isActive())
	assert.Equal(t, 2, f.camera.startCount())

	f.camera.setStartErr(nil)
	snap, err = f.session.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepCapturing, snap.Step)
}

func TestSession_DetectFailures(t *testing.T) {
	tests := []struct {
		name        string
		captureErr  error
		classifyErr error
		wantErr     error
		wantOutcome string
		wantStarts  int
	}{
		{
			name:        "camera not ready",
			captureErr:  domain.NewError(domain.ErrNotReady, "camera", nil),
			wantErr:     domain.ErrNotReady,
			wantOutcome: outcomeCaptureFailed,
			wantStarts:  1,
		},
		{
			name:        "classifier unreachable",
			classifyErr: domain.NewError(domain.ErrTransportFailure, "predictor", nil),
			wantErr:     domain.ErrTransportFailure,
			wantOutcome: outcomeFailed,
			wantStarts:  2,
		},
		{
			name:        "classifier returns garbage",
			classifyErr: domain.NewError(domain.ErrInvalidResponse, "predictor", nil),
			wantErr:     domain.ErrInvalidResponse,
			wantOutcome: outcomeFailed,
			wantStarts:  2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			f.camera.captureErr = tc.captureErr
			f.classifier.err = tc.classifyErr
			ctx := context.Background()

			_, err := f.session.Start(ctx)
			require.NoError(t, err)

			snap, err := f.session.Detect(ctx)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, domain.StepCapturing, snap.Step)
			assert.ErrorIs(t, snap.Err, tc.wantErr)
			assert.Nil(t, snap.Mood)
			assert.True(t, f.camera.isActive(), "camera must be live again for a retry")
			assert.Equal(t, tc.wantStarts, f.camera.starts)
			assert.Empty(t, f.cues.playedLabels())
			assert.Equal(t, []string{tc.wantOutcome}, f.observer.detections)
		})
	}
}

func TestSession_UnknownLabelUsesFallbackEmoji(t *testing.T) {
	f := newSessionFixture(t)
	f.classifier.result = domain.NewMoodResult("Contempt", nil)
	f.toResult(t)

	snap := f.session.Snapshot()
	assert.Equal(t, "contempt", snap.Mood.Label)
	assert.Equal(t, domain.UnknownMoodEmoji, snap.Emoji)
}

func TestSession_ProceedOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		result      domain.PlaylistResult
		findErr     error
		wantStep    domain.Step
		wantOutcome string
		wantErr     error
		wantPlays   int
		wantObserve string
	}{
		{
			name:        "no playlists found",
			findErr:     domain.NewError(domain.ErrNoResults, "search", nil),
			wantStep:    domain.StepPlaylist,
			wantOutcome: domain.OutcomeNoResults,
			wantObserve: domain.OutcomeNoResults,
		},
		{
			name:        "playlist without playable tracks",
			result:      playlistWith(0),
			wantStep:    domain.StepPlaylist,
			wantOutcome: domain.OutcomeEmptyPlaylist,
			wantObserve: domain.OutcomeEmptyPlaylist,
		},
		{
			name:        "transport failure stays on result",
			findErr:     domain.NewError(domain.ErrTransportFailure, "search", nil),
			wantStep:    domain.StepResult,
			wantErr:     domain.ErrTransportFailure,
			wantObserve: outcomeFailed,
		},
		{
			name:        "auth failure stays on result",
			findErr:     domain.NewError(domain.ErrAuthFailure, "token", nil),
			wantStep:    domain.StepResult,
			wantErr:     domain.ErrAuthFailure,
			wantObserve: outcomeFailed,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			f.finder.set(tc.result, tc.findErr)
			f.toResult(t)

			snap, err := f.session.ProceedToPlaylist(context.Background())
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, snap.Err, tc.wantErr)
				require.NotNil(t, snap.Mood, "mood must survive a failed lookup")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantStep, snap.Step)
			assert.Equal(t, tc.wantOutcome, snap.Outcome)
			assert.Nil(t, snap.CurrentTrack)
			assert.False(t, snap.Busy)

			plays, _ := f.player.counts()
			assert.Len(t, plays, tc.wantPlays)
			assert.Equal(t, []string{tc.wantObserve}, f.observer.playlists)
		})
	}
}

func TestSession_ProceedRetryAfterFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.finder.set(domain.PlaylistResult{}, domain.NewError(domain.ErrTransportFailure, "search", nil))
	f.toResult(t)

	_, err := f.session.ProceedToPlaylist(context.Background())
	require.Error(t, err)

	f.finder.set(playlistWith(2), nil)
	snap, err := f.session.ProceedToPlaylist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StepPlaylist, snap.Step)
	assert.Nil(t, snap.Err)
}

func TestSession_ProceedWhileResolvingIsBusy(t *testing.T) {
	f := newSessionFixture(t)
	f.finder.entered = make(chan struct{}, 1)
	f.finder.gate = make(chan struct{})
	f.toResult(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.ProceedToPlaylist(context.Background())
		done <- err
	}()
	<-f.finder.entered

	snap, err := f.session.ProceedToPlaylist(context.Background())
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.True(t, snap.Busy)

	close(f.finder.gate)
	require.NoError(t, <-done)
	assert.Len(t, f.finder.moods, 1)
}

func TestSession_ResetDiscardsLatePlaylist(t *testing.T) {
	f := newSessionFixture(t)
	f.finder.entered = make(chan struct{}, 1)
	f.finder.gate = make(chan struct{})
	f.toResult(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.ProceedToPlaylist(context.Background())
		done <- err
	}()
	<-f.finder.entered

	f.session.Reset()
	close(f.finder.gate)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("proceed did not return")
	}

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StepLanding, snap.Step)
	assert.Nil(t, snap.Playlist)
	plays, _ := f.player.counts()
	assert.Empty(t, plays)
}

func TestSession_SelectTrack(t *testing.T) {
	f := newSessionFixture(t)
	f.toResult(t)
	_, err := f.session.ProceedToPlaylist(context.Background())
	require.NoError(t, err)

	snap, err := f.session.SelectTrack(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentTrackIndex)
	assert.Equal(t, "t2", snap.CurrentTrack.ID)

	for _, idx := range []int{-1, 3, 99} {
		snap, err = f.session.SelectTrack(context.Background(), idx)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "index %d", idx)
		assert.Equal(t, 2, snap.CurrentTrackIndex)
	}

	plays, _ := f.player.counts()
	assert.Equal(t, []string{"https://p.test/0.mp3", "https://p.test/2.mp3"}, plays)
}

func TestSession_SelectTrackWithoutPreviewStopsPlayback(t *testing.T) {
	f := newSessionFixture(t)
	res := playlistWith(2)
	res.Tracks[1].PreviewURL = ""
	f.finder.set(res, nil)
	f.toResult(t)
	_, err := f.session.ProceedToPlaylist(context.Background())
	require.NoError(t, err)

	_, stopsBefore := f.player.counts()
	snap, err := f.session.SelectTrack(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentTrackIndex)

	plays, stops := f.player.counts()
	assert.Len(t, plays, 1)
	assert.Equal(t, stopsBefore+1, stops)
}

func TestSession_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		setup func(t *testing.T, f *sessionFixture)
		act   func(s *Session) (Snapshot, error)
		want  domain.Step
	}{
		{
			name:  "detect from landing",
			setup: func(*testing.T, *sessionFixture) {},
			act:   func(s *Session) (Snapshot, error) { return s.Detect(ctx) },
			want:  domain.StepLanding,
		},
		{
			name:  "proceed from landing",
			setup: func(*testing.T, *sessionFixture) {},
			act:   func(s *Session) (Snapshot, error) { return s.ProceedToPlaylist(ctx) },
			want:  domain.StepLanding,
		},
		{
			name: "start twice",
			setup: func(t *testing.T, f *sessionFixture) {
				_, err := f.session.Start(ctx)
				require.NoError(t, err)
			},
			act:  func(s *Session) (Snapshot, error) { return s.Start(ctx) },
			want: domain.StepCapturing,
		},
		{
			name:  "select track on result",
			setup: func(t *testing.T, f *sessionFixture) { f.toResult(t) },
			act:   func(s *Session) (Snapshot, error) { return s.SelectTrack(ctx, 0) },
			want:  domain.StepResult,
		},
		{
			name:  "recapture from landing",
			setup: func(*testing.T, *sessionFixture) {},
			act:   func(s *Session) (Snapshot, error) { return s.Recapture(ctx) },
			want:  domain.StepLanding,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			tc.setup(t, f)

			snap, err := tc.act(f.session)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, tc.want, snap.Step)
		})
	}
}

func TestSession_StartFailureStaysOnLanding(t *testing.T) {
	f := newSessionFixture(t)
	f.camera.startErr = domain.NewError(domain.ErrDeviceUnavailable, "camera", errors.New("no device"))

	snap, err := f.session.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	assert.Equal(t, domain.StepLanding, snap.Step)
	assert.ErrorIs(t, snap.Err, domain.ErrDeviceUnavailable)
}

func TestSession_Recapture(t *testing.T) {
	f := newSessionFixture(t)
	f.toResult(t)
	_, err := f.session.ProceedToPlaylist(context.Background())
	require.NoError(t, err)

	snap, err := f.session.Recapture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StepCapturing, snap.Step)
	assert.Nil(t, snap.Mood)
	assert.Nil(t, snap.Playlist)
	assert.Empty(t, snap.Outcome)
	assert.True(t, f.camera.isActive())

	_, stops := f.player.counts()
	assert.GreaterOrEqual(t, stops, 1, "preview must stop on recapture")

	// A second round works end to end.
	f.classifier.result = domain.NewMoodResult("happy", nil)
	snap, err = f.session.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "happy", snap.Mood.Label)
	assert.Equal(t, []string{"sad", "happy"}, f.cues.playedLabels())
}

func TestSession_ResetFromEveryStep(t *testing.T) {
	ctx := context.Background()
	steps := []struct {
		name  string
		setup func(t *testing.T, f *sessionFixture)
	}{
		{"landing", func(*testing.T, *sessionFixture) {}},
		{"capturing", func(t *testing.T, f *sessionFixture) {
			_, err := f.session.Start(ctx)
			require.NoError(t, err)
		}},
		{"result", func(t *testing.T, f *sessionFixture) { f.toResult(t) }},
		{"playlist", func(t *testing.T, f *sessionFixture) {
			f.toResult(t)
			_, err := f.session.ProceedToPlaylist(ctx)
			require.NoError(t, err)
		}},
	}

	for _, tc := range steps {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			tc.setup(t, f)

			snap := f.session.Reset()
			assert.Equal(t, domain.StepLanding, snap.Step)
			assert.Nil(t, snap.Mood)
			assert.Nil(t, snap.Playlist)
			assert.False(t, snap.Busy)
			assert.False(t, f.camera.isActive())
			_, stops := f.player.counts()
			assert.GreaterOrEqual(t, stops, 1)
		})
	}
}

func TestSession_IDsAreUnique(t *testing.T) {
	a := newSessionFixture(t).session
	b := newSessionFixture(t).session
	assert.NotEqual(t, a.ID(), b.ID())
}
