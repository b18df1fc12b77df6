package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/patrickmn/go-cache"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"
)

const (
	tokenCacheKey = "client-credentials"

	// DefaultTokenTTL applies when the provider omits expires_in.
	DefaultTokenTTL = 5 * time.Minute
)

// TokenCacheOptions tunes a TokenCache. Zero values pick production defaults.
type TokenCacheOptions struct {
	TokenURL   string
	DefaultTTL time.Duration
	HTTPClient *http.Client
	Clock      clock.PassiveClock
	// OnFetch observes every round-trip to the token endpoint.
	OnFetch func(err error)
}

// TokenCache obtains client-credentials tokens and reuses them until they
// expire. Concurrent callers that miss the cache share a single fetch.
type TokenCache struct {
	config     clientcredentials.Config
	httpClient *http.Client
	defaultTTL time.Duration
	clock      clock.PassiveClock
	store      *cache.Cache
	group      singleflight.Group
	onFetch    func(error)
	logger     *zap.Logger
}

var _ ports.TokenProvider = (*TokenCache)(nil)

func NewTokenCache(clientID, clientSecret string, logger *zap.Logger, opts TokenCacheOptions) *TokenCache {
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyauth.TokenURL
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTokenTTL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.OnFetch == nil {
		opts.OnFetch = func(error) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenCache{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: opts.HTTPClient,
		defaultTTL: opts.DefaultTTL,
		clock:      opts.Clock,
		// No janitor goroutine: entries are checked against the clock on read.
		store:   cache.New(cache.NoExpiration, 0),
		onFetch: opts.OnFetch,
		logger:  logger,
	}
}

// Token returns a valid bearer token, fetching a new one when the cached
// credential is missing or expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if cred, ok := c.cached(); ok {
		return cred.Token, nil
	}

	v, err, shared := c.group.Do(tokenCacheKey, func() (interface{}, error) {
		if cred, ok := c.cached(); ok {
			return cred, nil
		}
		// The fetch is shared, so one caller going away must not fail the rest.
		return c.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.logger.Debug("shared in-flight token fetch")
	}
	return v.(domain.Credential).Token, nil
}

// Invalidate drops the cached credential so the next call fetches anew.
func (c *TokenCache) Invalidate() {
	c.store.Delete(tokenCacheKey)
}

func (c *TokenCache) cached() (domain.Credential, bool) {
	v, found := c.store.Get(tokenCacheKey)
	if !found {
		return domain.Credential{}, false
	}
	cred, ok := v.(domain.Credential)
	if !ok || !cred.Valid(c.clock.Now()) {
		c.store.Delete(tokenCacheKey)
		return domain.Credential{}, false
	}
	return cred, true
}

func (c *TokenCache) fetch(ctx context.Context) (domain.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.Token(ctx)
	c.onFetch(err)
	if err != nil {
		c.store.Delete(tokenCacheKey)
		c.logger.Warn("spotify token request failed", zap.Error(err))
		return domain.Credential{}, classifyTokenError(err)
	}

	now := c.clock.Now()
	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = now.Add(c.defaultTTL)
	}
	cred := domain.Credential{Token: tok.AccessToken, ExpiresAt: expiresAt}

	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		// Already stale by our clock: hand it out once, never cache it.
		return cred, nil
	}
	c.store.Set(tokenCacheKey, cred, ttl)
	c.logger.Debug("spotify token refreshed", zap.Time("expires_at", expiresAt))
	return cred, nil
}

func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		detail := retrieveErr.ErrorCode
		if detail == "" && retrieveErr.Response != nil {
			detail = retrieveErr.Response.Status
		}
		return domain.NewError(domain.ErrAuthFailure, "spotify token", err).WithDetail(detail)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domain.NewError(domain.ErrTransportFailure, "spotify token", err)
	}
	return domain.NewError(domain.ErrInvalidResponse, "spotify token", err)
}
