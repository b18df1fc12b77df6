package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// maxImageBytes caps uploaded frames.
const maxImageBytes = 10 << 20

type predictResponse struct {
	Prediction string   `json:"prediction"`
	MoodLabel  string   `json:"mood_label"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Predict handles POST /predict with a multipart "image" field.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	// 1. Read the uploaded frame
	image, err := readImage(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// 2. Classify
	result, err := h.deps.Classifier.Classify(r.Context(), image)
	if h.deps.Metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		h.deps.Metrics.ObserveDetection(outcome)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, predictResponse{Prediction: result.Label, MoodLabel: result.Label, Confidence: result.Confidence})
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, domain.NewError(domain.ErrInvalidArgument, "predict", err).WithDetail("multipart form with an image field is required")
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, domain.NewError(domain.ErrInvalidArgument, "predict", nil).WithDetail("image is required")
		}
		return nil, domain.NewError(domain.ErrInvalidArgument, "predict", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.NewError(domain.ErrInvalidArgument, "predict", err)
	}
	if len(data) == 0 {
		return nil, domain.NewError(domain.ErrInvalidArgument, "predict", nil).WithDetail("image is empty")
	}
	return data, nil
}
