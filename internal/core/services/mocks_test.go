package services

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
)

// --- Mocks ---

// mockCamera tracks start/stop calls and hands out a fixed frame. When gate
// is set, CaptureStill signals entered and then blocks until gate is closed.
type mockCamera struct {
	mu         sync.Mutex
	active     bool
	starts     int
	stops      int
	startErr   error
	captureErr error
	frame      []byte
	entered    chan struct{}
	gate       chan struct{}
}

func (m *mockCamera) Start(context.Context) (ports.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.active = true
	return nil, nil
}

func (m *mockCamera) CaptureStill(context.Context) ([]byte, error) {
	m.mu.Lock()
	entered, gate := m.entered, m.gate
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return nil, domain.NewError(domain.ErrNotReady, "mock camera", nil)
	}
	if m.captureErr != nil {
		return nil, m.captureErr
	}
	return m.frame, nil
}

func (m *mockCamera) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		m.stops++
	}
	m.active = false
}

func (m *mockCamera) setStartErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

func (m *mockCamera) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

func (m *mockCamera) isActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// mockClassifier returns a fixed result. When gate is set, Classify signals
// entered and then blocks until gate is closed.
type mockClassifier struct {
	mu      sync.Mutex
	result  domain.MoodResult
	err     error
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func (m *mockClassifier) Classify(ctx context.Context, image []byte) (domain.MoodResult, error) {
	m.mu.Lock()
	m.calls++
	entered, gate := m.entered, m.gate
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.err
}

func (m *mockClassifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockFinder is a PlaylistSource with the same gating as mockClassifier.
type mockFinder struct {
	mu      sync.Mutex
	result  domain.PlaylistResult
	err     error
	moods   []string
	entered chan struct{}
	gate    chan struct{}
}

func (m *mockFinder) Find(ctx context.Context, mood string) (domain.PlaylistResult, error) {
	m.mu.Lock()
	m.moods = append(m.moods, mood)
	entered, gate := m.entered, m.gate
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.err
}

func (m *mockFinder) set(result domain.PlaylistResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result, m.err = result, err
}

// mockCues records feedback requests.
type mockCues struct {
	mu      sync.Mutex
	played  []string
	cancels int
}

func (m *mockCues) PlayCue(_ context.Context, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, label)
}

func (m *mockCues) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
}

func (m *mockCues) playedLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.played...)
}

// mockSink records audio sink calls.
type mockSink struct {
	mu      sync.Mutex
	plays   []string
	stops   int
	playErr error
}

func (m *mockSink) Play(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.plays = append(m.plays, source)
	return nil
}

func (m *mockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockSink) counts() (plays []string, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.plays...), m.stops
}

// mockCueLibrary resolves every label except those in missing.
type mockCueLibrary struct {
	missing map[string]bool
}

func (m mockCueLibrary) Resolve(label string) (domain.Cue, error) {
	if m.missing[label] {
		return domain.Cue{}, domain.ErrNotFound
	}
	return domain.Cue{Label: label, Source: "sfx-" + label + ".mp3"}, nil
}

// mockCatalog serves fixed candidates and tracks.
type mockCatalog struct {
	mu          sync.Mutex
	candidates  []domain.PlaylistCandidate
	searchErr   error
	tracks      []domain.Track
	resolveErr  error
	resolvedIDs []string
}

func (m *mockCatalog) SearchPlaylists(ctx context.Context, mood string) ([]domain.PlaylistCandidate, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.candidates, nil
}

func (m *mockCatalog) ResolveTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	m.mu.Lock()
	m.resolvedIDs = append(m.resolvedIDs, playlistID)
	m.mu.Unlock()
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.tracks, nil
}

// recordingObserver captures stage outcomes.
type recordingObserver struct {
	mu         sync.Mutex
	detections []string
	playlists  []string
}

func (r *recordingObserver) ObserveDetection(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detections = append(r.detections, outcome)
}

func (r *recordingObserver) ObservePlaylist(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlists = append(r.playlists, outcome)
}
