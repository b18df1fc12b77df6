package ports

import (
	"context"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// MoodClassifier turns a still image into a mood label.
type MoodClassifier interface {
	Classify(ctx context.Context, image []byte) (domain.MoodResult, error)
}
