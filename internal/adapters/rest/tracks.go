package rest

import "github.com/ewilliams-labs/momu/internal/core/domain"

type playlistInfoJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cover string `json:"cover"`
	URL   string `json:"url"`
}

type trackJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Image      string `json:"image"`
	PreviewURL string `json:"preview_url"`
	SpotifyURL string `json:"spotify_url"`
	Duration   string `json:"duration"`
}

func toPlaylistInfo(c domain.PlaylistCandidate) playlistInfoJSON {
	return playlistInfoJSON{ID: c.ID, Name: c.Name, Cover: c.CoverURL, URL: c.ExternalURL}
}

func toTrackJSON(t domain.Track) trackJSON {
	return trackJSON{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Image:      t.CoverURL,
		PreviewURL: t.PreviewURL,
		SpotifyURL: t.ExternalURL,
		Duration:   t.DurationText,
	}
}

// toTracksJSON never returns nil so clients always see an array.
func toTracksJSON(tracks []domain.Track) []trackJSON {
	out := make([]trackJSON, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, toTrackJSON(t))
	}
	return out
}
