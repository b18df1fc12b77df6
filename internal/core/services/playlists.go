package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"go.uber.org/zap"
)

// PlaylistFinder turns a mood into one playlist with its tracks.
type PlaylistFinder struct {
	catalog ports.Catalog
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaylistFinder constructs a PlaylistFinder. A nil rng is seeded from
// the wall clock.
func NewPlaylistFinder(catalog ports.Catalog, rng *rand.Rand, logger *zap.Logger) *PlaylistFinder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaylistFinder{catalog: catalog, rng: rng, logger: logger}
}

// Find searches the catalog for the mood, picks one eligible candidate
// uniformly at random and resolves its tracks.
func (f *PlaylistFinder) Find(ctx context.Context, mood string) (domain.PlaylistResult, error) {
	label := domain.NormalizeLabel(mood)

	// 1. Search candidates for the mood
	candidates, err := f.catalog.SearchPlaylists(ctx, label)
	if err != nil {
		return domain.PlaylistResult{}, fmt.Errorf("service: failed to search playlists: %w", err)
	}
	if len(candidates) == 0 {
		return domain.PlaylistResult{}, domain.NewError(domain.ErrNoResults, "service: search playlists", nil).WithDetail(label)
	}

	// 2. Pick one
	chosen := candidates[f.pick(len(candidates))]

	// 3. Resolve its tracks
	tracks, err := f.catalog.ResolveTracks(ctx, chosen.ID)
	if err != nil {
		return domain.PlaylistResult{}, fmt.Errorf("service: failed to resolve tracks for %s: %w", chosen.ID, err)
	}

	result, err := domain.NewPlaylistResult(chosen, tracks)
	if err != nil {
		return domain.PlaylistResult{}, fmt.Errorf("service: %w", err)
	}
	f.logger.Info("playlist selected",
		zap.String("mood", label),
		zap.String("playlist_id", chosen.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("tracks", len(result.Tracks)))
	return result, nil
}

func (f *PlaylistFinder) pick(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Intn(n)
}
