package domain

import (
	"strings"
	"time"
)

// UnknownMoodEmoji is shown for labels outside the known set.
const UnknownMoodEmoji = "🙂"

// MoodResult is the outcome of a single detection.
type MoodResult struct {
	Label      string
	Confidence *float64
}

// NewMoodResult normalizes label before building the result.
func NewMoodResult(label string, confidence *float64) MoodResult {
	return MoodResult{Label: NormalizeLabel(label), Confidence: confidence}
}

// NormalizeLabel lower-cases and trims a mood label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// MoodProfile describes how a mood is presented and which catalog term it
// searches with.
type MoodProfile struct {
	Label      string
	Emoji      string
	SearchTerm string
}

// Term returns the catalog search term, falling back to the label itself.
func (p MoodProfile) Term() string {
	if p.SearchTerm != "" {
		return p.SearchTerm
	}
	return p.Label
}

// DisplayEmoji returns the profile emoji or UnknownMoodEmoji.
func (p MoodProfile) DisplayEmoji() string {
	if p.Emoji != "" {
		return p.Emoji
	}
	return UnknownMoodEmoji
}

// UnknownProfile is used for labels no store knows about: the label is
// searched verbatim and shown with the neutral emoji.
func UnknownProfile(label string) MoodProfile {
	label = NormalizeLabel(label)
	return MoodProfile{Label: label, Emoji: UnknownMoodEmoji, SearchTerm: label}
}

var defaultProfiles = []MoodProfile{
	{Label: "happy", Emoji: "😄", SearchTerm: "happy"},
	{Label: "sad", Emoji: "😢", SearchTerm: "sad"},
	{Label: "angry", Emoji: "😠", SearchTerm: "rock"},
	{Label: "neutral", Emoji: "😐", SearchTerm: "chill"},
	{Label: "fear", Emoji: "😨", SearchTerm: "ambient"},
	{Label: "disgust", Emoji: "🤢", SearchTerm: "emo"},
	{Label: "surprise", Emoji: "😲", SearchTerm: "edm"},
}

// DefaultMoodProfiles returns a fresh copy of the built-in mood table.
func DefaultMoodProfiles() []MoodProfile {
	out := make([]MoodProfile, len(defaultProfiles))
	copy(out, defaultProfiles)
	return out
}

// Cue is a short audio clip played when a mood is revealed.
type Cue struct {
	Label  string
	Source string
	// Length is the natural clip length, zero when it could not be probed.
	Length time.Duration
}

// DefaultCueLabel names the fallback cue used when a mood has no clip.
const DefaultCueLabel = "default"

// CueFileName is the conventional file name of the cue for label.
func CueFileName(label string) string {
	return "sfx-" + NormalizeLabel(label) + ".mp3"
}
