package domain

import "fmt"

// Track represents a playable entry of a resolved playlist.
type Track struct {
	ID           string
	Title        string
	Artist       string // comma-joined artist names
	CoverURL     string // optional
	PreviewURL   string // empty when the catalog offers no preview
	ExternalURL  string
	DurationText string // "m:ss"
}

// HasPreview reports whether the track can be auditioned.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// FormatDuration renders milliseconds as m:ss with zero-padded seconds.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
