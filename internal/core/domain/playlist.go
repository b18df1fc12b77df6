package domain

import (
	"fmt"
	"strings"
)

// MaxTracks caps the number of tracks a resolved playlist carries.
const MaxTracks = 15

// PlaylistCandidate is a search hit eligible for selection. Only candidates
// with an ID and artwork are ever produced.
type PlaylistCandidate struct {
	ID          string
	Name        string
	CoverURL    string
	ExternalURL string
}

// PlaylistResult is the chosen playlist together with its resolved tracks.
type PlaylistResult struct {
	Info   PlaylistCandidate
	Tracks []Track
}

// NewPlaylistResult validates the chosen candidate and caps its tracks at
// MaxTracks.
func NewPlaylistResult(info PlaylistCandidate, tracks []Track) (PlaylistResult, error) {
	if strings.TrimSpace(info.ID) == "" {
		return PlaylistResult{}, fmt.Errorf("playlist without id: %w", ErrInvalidArgument)
	}
	if tracks == nil {
		tracks = []Track{}
	}
	return PlaylistResult{Info: info, Tracks: TruncateTracks(tracks)}, nil
}

// TrackAt returns the track at index i and whether i was in range.
func (p PlaylistResult) TrackAt(i int) (Track, bool) {
	if i < 0 || i >= len(p.Tracks) {
		return Track{}, false
	}
	return p.Tracks[i], true
}

// TruncateTracks returns at most MaxTracks tracks, preserving order.
func TruncateTracks(tracks []Track) []Track {
	if len(tracks) <= MaxTracks {
		return tracks
	}
	return tracks[:MaxTracks]
}
