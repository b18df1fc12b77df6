package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/ewilliams-labs/momu/internal/core/services"
	"github.com/ewilliams-labs/momu/internal/metrics"
	"go.uber.org/zap"
)

// Deps are the collaborators behind the HTTP surface. Metrics is optional.
type Deps struct {
	Classifier ports.MoodClassifier
	Playlists  services.PlaylistSource
	Session    *services.Session
	Moods      ports.MoodStore
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Handler manages the HTTP interface for the application.
type Handler struct {
	deps    Deps
	router  *http.ServeMux
	handler http.Handler
}

// NewHandler initializes the HTTP adapter, its routes and middleware.
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &Handler{
		deps:   deps,
		router: http.NewServeMux(),
	}

	h.routes()
	h.handler = withRequestID(withCORS(h.instrument(h.router)))

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /moods", h.ListMoods)

	// One-shot pipeline stages
	h.router.HandleFunc("POST /predict", h.Predict)
	h.router.HandleFunc("GET /playlist", h.GetPlaylist)

	// Interactive session
	h.router.HandleFunc("GET /session", h.SessionState)
	h.router.HandleFunc("POST /session/start", h.SessionStart)
	h.router.HandleFunc("POST /session/detect", h.SessionDetect)
	h.router.HandleFunc("POST /session/playlist", h.SessionProceed)
	h.router.HandleFunc("POST /session/tracks/{index}", h.SessionSelectTrack)
	h.router.HandleFunc("POST /session/recapture", h.SessionRecapture)
	h.router.HandleFunc("POST /session/reset", h.SessionReset)

	if h.deps.Metrics != nil {
		h.router.Handle("GET /metrics", h.deps.Metrics.Handler())
	}
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "message": "momu is live 🎵"})
}

type moodJSON struct {
	Label      string `json:"label"`
	Emoji      string `json:"emoji"`
	SearchTerm string `json:"search_term"`
}

// ListMoods handles GET /moods
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.deps.Moods.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]moodJSON, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, moodJSON{Label: p.Label, Emoji: p.DisplayEmoji(), SearchTerm: p.Term()})
	}
	writeJSON(w, map[string]any{"moods": out})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Failures are reported in the body; the status stays 200 so clients can
// always decode a JSON payload.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logFailure(r, err)
	writeJSON(w, errorResponse{Error: domain.Message(err), Code: domain.Code(err)})
}

func (h *Handler) logFailure(r *http.Request, err error) {
	h.deps.Logger.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get(requestIDHeader)),
		zap.String("code", domain.Code(err)),
		zap.Error(err))
}
