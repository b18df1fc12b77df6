package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

type playlistResponse struct {
	Mood         string            `json:"mood,omitempty"`
	PlaylistInfo *playlistInfoJSON `json:"playlist_info,omitempty"`
	Tracks       []trackJSON       `json:"tracks"`
	Error        string            `json:"error,omitempty"`
	Code         string            `json:"code,omitempty"`
}

// GetPlaylist handles GET /playlist?mood=
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	mood := strings.TrimSpace(r.URL.Query().Get("mood"))
	if mood == "" {
		h.writePlaylistError(w, r, domain.NewError(domain.ErrInvalidArgument, "playlist", nil).WithDetail("mood is required"))
		return
	}

	result, err := h.deps.Playlists.Find(r.Context(), mood)
	if err != nil {
		h.writePlaylistError(w, r, err)
		return
	}

	outcome := domain.OutcomeReady
	if len(result.Tracks) == 0 {
		outcome = domain.OutcomeEmptyPlaylist
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.ObservePlaylist(outcome)
	}

	info := toPlaylistInfo(result.Info)
	writeJSON(w, playlistResponse{
		Mood:         domain.NormalizeLabel(mood),
		PlaylistInfo: &info,
		Tracks:       toTracksJSON(result.Tracks),
	})
}

func (h *Handler) writePlaylistError(w http.ResponseWriter, r *http.Request, err error) {
	if h.deps.Metrics != nil {
		if errors.Is(err, domain.ErrNoResults) {
			h.deps.Metrics.ObservePlaylist(domain.OutcomeNoResults)
		} else {
			h.deps.Metrics.ObservePlaylist("failed")
		}
	}
	h.logFailure(r, err)
	writeJSON(w, playlistResponse{
		Tracks: []trackJSON{},
		Error:  domain.Message(err),
		Code:   domain.Code(err),
	})
}
