// Package predictor adapts an external facial-expression classifier to the
// MoodClassifier port. The classifier is reached either over HTTP or by
// running a local command that prints a single JSON object.
package predictor

import (
	"bytes"
	"encoding/json"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// prediction is the classifier's output. Older builds report the label as
// mood_label instead of prediction.
type prediction struct {
	Prediction *string  `json:"prediction"`
	MoodLabel  *string  `json:"mood_label"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

func decodePrediction(raw []byte) (domain.MoodResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.MoodResult{}, domain.NewError(domain.ErrInvalidResponse, "predictor", nil).WithDetail("empty output")
	}

	var p prediction
	if err := json.Unmarshal(trimmed, &p); err != nil {
		// Tolerate log noise before the JSON line.
		last := trimmed
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			last = bytes.TrimSpace(trimmed[i+1:])
		}
		if err2 := json.Unmarshal(last, &p); err2 != nil {
			return domain.MoodResult{}, domain.NewError(domain.ErrInvalidResponse, "predictor", err)
		}
	}

	if p.Error != "" {
		return domain.MoodResult{}, domain.NewError(domain.ErrInvalidResponse, "predictor", nil).WithDetail(p.Error)
	}

	label := ""
	switch {
	case p.Prediction != nil:
		label = *p.Prediction
	case p.MoodLabel != nil:
		label = *p.MoodLabel
	}
	result := domain.NewMoodResult(label, p.Confidence)
	if result.Label == "" {
		return domain.MoodResult{}, domain.NewError(domain.ErrInvalidResponse, "predictor", nil).WithDetail("missing mood label")
	}
	return result, nil
}
