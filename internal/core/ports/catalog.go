package ports

import (
	"context"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// PlaylistSearcher finds playlists matching a mood. Implementations return an
// error wrapping domain.ErrNoResults when nothing eligible comes back.
type PlaylistSearcher interface {
	SearchPlaylists(ctx context.Context, mood string) ([]domain.PlaylistCandidate, error)
}

// TrackResolver lists up to domain.MaxTracks valid tracks of a playlist.
type TrackResolver interface {
	ResolveTracks(ctx context.Context, playlistID string) ([]domain.Track, error)
}

type Catalog interface {
	PlaylistSearcher
	TrackResolver
}

// TokenProvider hands out catalog bearer tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}
