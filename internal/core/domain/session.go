package domain

import "time"

// Step is the position of a session in the mood-to-playlist flow.
type Step string

const (
	StepLanding   Step = "landing"
	StepCapturing Step = "capturing"
	StepDetecting Step = "detecting"
	StepResult    Step = "result"
	StepPlaylist  Step = "playlist"
)

// Playlist outcomes recorded when a session reaches StepPlaylist.
const (
	OutcomeReady         = "ready"
	OutcomeNoResults     = "no_results"
	OutcomeEmptyPlaylist = "empty_playlist"
)

// Credential is a bearer token for the music catalog.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the credential can still be used at now.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}
