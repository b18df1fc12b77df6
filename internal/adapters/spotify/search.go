package spotify

import (
	"context"
	"fmt"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// SearchPlaylists returns the playlists matching the mood's search term that
// have an ID and cover art, in catalog order.
func (c *Client) SearchPlaylists(ctx context.Context, mood string) ([]domain.PlaylistCandidate, error) {
	label := domain.NormalizeLabel(mood)
	if label == "" {
		return nil, fmt.Errorf("spotify adapter: search without mood: %w", domain.ErrInvalidArgument)
	}
	term := c.searchTerm(ctx, label)

	result, err := c.api.Search(ctx, term, spotify.SearchTypePlaylist,
		spotify.Limit(searchLimit), spotify.Market(c.market))
	if err != nil {
		return nil, wrapAPIError("search", err)
	}

	var candidates []domain.PlaylistCandidate
	if result != nil && result.Playlists != nil {
		candidates = make([]domain.PlaylistCandidate, 0, len(result.Playlists.Playlists))
		for _, p := range result.Playlists.Playlists {
			candidate, ok := mapPlaylistCandidate(p)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) == 0 {
		return nil, domain.NewError(domain.ErrNoResults, "spotify search", nil).WithDetail(term)
	}

	c.logger.Debug("playlist search complete",
		zap.String("mood", label), zap.String("term", term), zap.Int("candidates", len(candidates)))
	return candidates, nil
}
