// Package spotify adapts the Spotify Web API to the catalog ports.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"
	DefaultMarket  = "ID"

	searchLimit   = 20
	tracksPerPage = 50
)

// Options configures a Client. Zero values pick production defaults.
type Options struct {
	BaseURL     string
	Market      string
	MaxRetries  int
	BaseBackoff time.Duration
	Timeout     time.Duration
	// Transport is the innermost round tripper, mostly for tests.
	Transport http.RoundTripper
}

// Client is the Spotify catalog adapter. Search goes through the zmb3
// client; playlist items are read through the same authorized transport
// with local wire models so null and non-track entries can be skipped.
type Client struct {
	api        *spotify.Client
	httpClient *http.Client
	baseURL    string
	market     string
	moods      ports.MoodStore
	logger     *zap.Logger
}

// compile-time interface assertion
var _ ports.Catalog = (*Client)(nil)

// NewClient constructs a catalog client that authorizes every request with
// tokens and resolves mood search terms through moods.
func NewClient(tokens ports.TokenProvider, moods ports.MoodStore, logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Market == "" {
		opts.Market = DefaultMarket
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	httpClient := &http.Client{
		Timeout: opts.Timeout,
		Transport: &retryTransport{
			next: &authTransport{
				next:   opts.Transport,
				tokens: tokens,
				logger: logger,
			},
			maxRetries:  opts.MaxRetries,
			baseBackoff: opts.BaseBackoff,
			logger:      logger,
		},
	}

	return &Client{
		api:        spotify.New(httpClient, spotify.WithBaseURL(base+"/")),
		httpClient: httpClient,
		baseURL:    base,
		market:     opts.Market,
		moods:      moods,
		logger:     logger,
	}
}

// searchTerm maps a mood label to its catalog query. Unknown labels are
// searched verbatim.
func (c *Client) searchTerm(ctx context.Context, label string) string {
	if c.moods == nil {
		return domain.UnknownProfile(label).Term()
	}
	profile, err := c.moods.Profile(ctx, label)
	if err != nil {
		return domain.UnknownProfile(label).Term()
	}
	return profile.Term()
}
