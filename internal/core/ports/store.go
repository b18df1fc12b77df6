package ports

import (
	"context"

	"github.com/ewilliams-labs/momu/internal/core/domain"
)

// MoodStore holds the mood presentation table. Profile returns an error
// wrapping domain.ErrNotFound for labels it does not know.
type MoodStore interface {
	Profile(ctx context.Context, label string) (domain.MoodProfile, error)
	List(ctx context.Context) ([]domain.MoodProfile, error)
	Save(ctx context.Context, p domain.MoodProfile) error
}
