package spotify

import (
	"strings"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/zmb3/spotify/v2"
)

// mapTrackToDomain converts a raw Spotify track to a clean Domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	// 1. Flatten Artists (List -> String)
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		if a.Name != "" {
			artistNames = append(artistNames, a.Name)
		}
	}

	// 2. Extract Album Cover
	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	return domain.Track{
		ID:           st.ID,
		Title:        st.Name,
		Artist:       strings.Join(artistNames, ", "),
		CoverURL:     coverURL,
		PreviewURL:   st.PreviewURL,
		ExternalURL:  st.ExternalURLs["spotify"],
		DurationText: domain.FormatDuration(st.DurationMs),
	}
}

// isPlayableTrack drops null entries, episodes and local files.
func isPlayableTrack(item playlistItem) bool {
	t := item.Track
	if t == nil || t.IsLocal || t.ID == "" {
		return false
	}
	return t.Type == "" || t.Type == "track"
}

// mapPlaylistCandidate keeps only playlists that have an ID and artwork.
func mapPlaylistCandidate(p spotify.SimplePlaylist) (domain.PlaylistCandidate, bool) {
	if p.ID == "" || len(p.Images) == 0 || p.Images[0].URL == "" {
		return domain.PlaylistCandidate{}, false
	}
	return domain.PlaylistCandidate{
		ID:          string(p.ID),
		Name:        p.Name,
		CoverURL:    p.Images[0].URL,
		ExternalURL: p.ExternalURLs["spotify"],
	}, true
}
