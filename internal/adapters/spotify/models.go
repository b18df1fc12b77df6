package spotify

// Wire models for the playlist items endpoint. The track field is nullable
// and may hold an episode, so items are decoded loosely and filtered later.

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type spotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	DurationMs   int               `json:"duration_ms"`
	PreviewURL   string            `json:"preview_url"`
	IsLocal      bool              `json:"is_local"`
	Artists      []spotifyArtist   `json:"artists"`
	Album        spotifyAlbum      `json:"album"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type playlistItem struct {
	Track *spotifyTrack `json:"track"`
}

type playlistItemsPage struct {
	Items  []playlistItem `json:"items"`
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
	Next   string         `json:"next"`
}

type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
