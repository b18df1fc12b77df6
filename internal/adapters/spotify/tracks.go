package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"go.uber.org/zap"
)

// ResolveTracks lists up to domain.MaxTracks valid tracks of a playlist in
// playlist order, paging until enough valid tracks are found or the
// playlist is exhausted.
func (c *Client) ResolveTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	id, err := ExtractPlaylistID(playlistID)
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, domain.MaxTracks)
	skipped := 0
	offset := 0
	for len(tracks) < domain.MaxTracks {
		page, err := c.fetchPlaylistItems(ctx, id, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if !isPlayableTrack(item) {
				skipped++
				continue
			}
			tracks = append(tracks, mapTrackToDomain(*item.Track))
			if len(tracks) == domain.MaxTracks {
				break
			}
		}

		offset += len(page.Items)
		if len(page.Items) == 0 || page.Next == "" || (page.Total > 0 && offset >= page.Total) {
			break
		}
	}

	c.logger.Debug("playlist tracks resolved",
		zap.String("playlist_id", id), zap.Int("tracks", len(tracks)), zap.Int("skipped", skipped))
	return tracks, nil
}

func (c *Client) fetchPlaylistItems(ctx context.Context, playlistID string, offset int) (playlistItemsPage, error) {
	q := url.Values{}
	q.Set("market", c.market)
	q.Set("limit", strconv.Itoa(tracksPerPage))
	q.Set("offset", strconv.Itoa(offset))
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks?%s", c.baseURL, url.PathEscape(playlistID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return playlistItemsPage{}, fmt.Errorf("spotify adapter: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return playlistItemsPage{}, wrapAPIError("playlist items", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return playlistItemsPage{}, statusError("playlist items", resp)
	}

	var page playlistItemsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return playlistItemsPage{}, domain.NewError(domain.ErrInvalidResponse, "spotify playlist items", err)
	}
	return page, nil
}

func statusError(op string, resp *http.Response) error {
	kind := domain.ErrTransportFailure
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = domain.ErrAuthFailure
	}

	detail := fmt.Sprintf("status %d", resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body apiErrorBody
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		detail += ": " + body.Error.Message
	}
	return domain.NewError(kind, "spotify "+op, nil).WithDetail(detail)
}

// ExtractPlaylistID accepts a bare playlist ID, a spotify:playlist: URI or an
// open.spotify.com playlist URL.
func ExtractPlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "spotify:playlist:") {
		ref = strings.TrimPrefix(ref, "spotify:playlist:")
	} else if strings.Contains(ref, "open.spotify.com/playlist/") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("spotify adapter: playlist url %q: %w", ref, domain.ErrInvalidArgument)
		}
		ref = strings.TrimPrefix(u.Path, "/playlist/")
	}
	ref = strings.Trim(ref, "/")
	if ref == "" || strings.ContainsAny(ref, "/?# ") {
		return "", fmt.Errorf("spotify adapter: playlist id %q: %w", ref, domain.ErrInvalidArgument)
	}
	return ref, nil
}
