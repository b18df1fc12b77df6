package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/services"
)

type moodResultJSON struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type sessionPlaylistJSON struct {
	Info   playlistInfoJSON `json:"playlist_info"`
	Tracks []trackJSON      `json:"tracks"`
}

type sessionResponse struct {
	ID                string               `json:"id"`
	Step              string               `json:"step"`
	Mood              *moodResultJSON      `json:"mood,omitempty"`
	Emoji             string               `json:"emoji,omitempty"`
	Playlist          *sessionPlaylistJSON `json:"playlist,omitempty"`
	CurrentTrackIndex int                  `json:"current_track_index"`
	CurrentTrack      *trackJSON           `json:"current_track,omitempty"`
	Outcome           string               `json:"outcome,omitempty"`
	Busy              bool                 `json:"busy"`
	Error             string               `json:"error,omitempty"`
	Code              string               `json:"code,omitempty"`
}

func toSessionResponse(snap services.Snapshot, err error) sessionResponse {
	resp := sessionResponse{
		ID:                snap.ID,
		Step:              string(snap.Step),
		Emoji:             snap.Emoji,
		CurrentTrackIndex: snap.CurrentTrackIndex,
		Outcome:           snap.Outcome,
		Busy:              snap.Busy,
	}
	if snap.Mood != nil {
		resp.Mood = &moodResultJSON{Label: snap.Mood.Label, Confidence: snap.Mood.Confidence}
	}
	if snap.Playlist != nil {
		resp.Playlist = &sessionPlaylistJSON{
			Info:   toPlaylistInfo(snap.Playlist.Info),
			Tracks: toTracksJSON(snap.Playlist.Tracks),
		}
	}
	if snap.CurrentTrack != nil {
		t := toTrackJSON(*snap.CurrentTrack)
		resp.CurrentTrack = &t
	}
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		resp.Error = domain.Message(err)
		resp.Code = domain.Code(err)
	}
	return resp
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, snap services.Snapshot, err error) {
	if err != nil {
		h.logFailure(r, err)
	}
	writeJSON(w, toSessionResponse(snap, err))
}

// SessionState handles GET /session
func (h *Handler) SessionState(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, r, h.deps.Session.Snapshot(), nil)
}

// SessionStart handles POST /session/start
func (h *Handler) SessionStart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session.Start(r.Context())
	h.writeSession(w, r, snap, err)
}

// SessionDetect handles POST /session/detect. Detection outlives the
// request so a disconnecting client cannot strand the session in
// Detecting.
func (h *Handler) SessionDetect(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session.Detect(context.WithoutCancel(r.Context()))
	h.writeSession(w, r, snap, err)
}

// SessionProceed handles POST /session/playlist
func (h *Handler) SessionProceed(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session.ProceedToPlaylist(context.WithoutCancel(r.Context()))
	h.writeSession(w, r, snap, err)
}

// SessionSelectTrack handles POST /session/tracks/{index}
func (h *Handler) SessionSelectTrack(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeSession(w, r, h.deps.Session.Snapshot(),
			domain.NewError(domain.ErrInvalidArgument, "select track", err).WithDetail("index must be an integer"))
		return
	}
	snap, err := h.deps.Session.SelectTrack(context.WithoutCancel(r.Context()), index)
	h.writeSession(w, r, snap, err)
}

// SessionRecapture handles POST /session/recapture
func (h *Handler) SessionRecapture(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Session.Recapture(context.WithoutCancel(r.Context()))
	h.writeSession(w, r, snap, err)
}

// SessionReset handles POST /session/reset
func (h *Handler) SessionReset(w http.ResponseWriter, r *http.Request) {
	h.writeSession(w, r, h.deps.Session.Reset(), nil)
}
