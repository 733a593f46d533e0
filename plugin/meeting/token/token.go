// Package token caches OAuth access tokens for meeting providers.
package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/hrygo/helpgpt/plugin/ai/timeout"
	"github.com/hrygo/helpgpt/plugin/meeting"
)

const (
	// RefreshMargin is how long before expiry a cached token is replaced.
	RefreshMargin = 60 * time.Second

	// DefaultLifetime is assumed when the token endpoint omits expires_in.
	DefaultLifetime = time.Hour
)

var errMissingCredentials = errors.New("client credentials are not configured")

// Token is a cached access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Config configures a Cache.
type Config struct {
	// Provider names the owner in errors and logs.
	Provider string

	// StaticToken, when set, is returned unconditionally and no exchange ever happens.
	StaticToken string

	ClientID     string
	ClientSecret string
	TokenURL     string

	// GrantType overrides "client_credentials" (Zoom uses "account_credentials").
	GrantType string
	// Params are extra form parameters sent to the token endpoint (e.g. account_id).
	Params url.Values
	// AuthStyle selects how client credentials are sent. Zero auto-detects.
	AuthStyle oauth2.AuthStyle

	// HTTPClient is used for the exchange. Defaults to a client with the token timeout.
	HTTPClient *http.Client
	// Now is the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// Cache returns a valid access token, exchanging client credentials when the
// cached one is missing or about to expire. It is safe for concurrent use; at
// most one exchange is in flight at a time.
type Cache struct {
	config Config
	creds  *clientcredentials.Config

	mu    sync.Mutex
	token *Token
}

// NewCache creates a token cache.
func NewCache(config Config) *Cache {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: timeout.TokenTimeout}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	c := &Cache{config: config}
	if config.StaticToken == "" {
		params := url.Values{}
		for k, v := range config.Params {
			params[k] = v
		}
		if config.GrantType != "" {
			params.Set("grant_type", config.GrantType)
		}
		c.creds = &clientcredentials.Config{
			ClientID:       config.ClientID,
			ClientSecret:   config.ClientSecret,
			TokenURL:       config.TokenURL,
			EndpointParams: params,
			AuthStyle:      config.AuthStyle,
		}
	}
	return c
}

// Token returns a token valid for at least RefreshMargin.
// Failures are returned as *meeting.AuthError.
func (c *Cache) Token(ctx context.Context) (string, error) {
	if c.config.StaticToken != "" {
		return c.config.StaticToken, nil
	}
	if c.config.ClientID == "" || c.config.ClientSecret == "" || c.config.TokenURL == "" {
		return "", &meeting.AuthError{Provider: c.config.Provider, Cause: errMissingCredentials}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.config.Now()
	if c.token != nil && now.Before(c.token.ExpiresAt.Add(-RefreshMargin)) {
		return c.token.Value, nil
	}

	fresh, err := c.exchange(ctx, now)
	if err != nil {
		return "", &meeting.AuthError{Provider: c.config.Provider, Cause: err}
	}
	c.token = fresh
	slog.Debug("access token refreshed",
		"provider", c.config.Provider,
		"expires_at", fresh.ExpiresAt,
	)
	return fresh.Value, nil
}

// Invalidate drops the cached token so the next call exchanges again.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

func (c *Cache) exchange(ctx context.Context, now time.Time) (*Token, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.TokenTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.config.HTTPClient)

	tok, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	lifetime := DefaultLifetime
	if !tok.Expiry.IsZero() {
		lifetime = time.Until(tok.Expiry)
	}
	return &Token{Value: tok.AccessToken, ExpiresAt: now.Add(lifetime)}, nil
}
