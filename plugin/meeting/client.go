package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/hrygo/helpgpt/plugin/ai/timeout"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 1 << 20

// Authorizer returns the value of the Authorization header for one request.
type Authorizer func(ctx context.Context) (string, error)

// Client performs JSON REST calls against one provider.
type Client struct {
	Provider   string
	BaseURL    string
	HTTPClient *http.Client
	Authorize  Authorizer
}

// NewHTTPClient returns the client used for provider REST calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: timeout.ProviderTimeout}
}

// Do sends in as a JSON body (when non-nil) and decodes a 2xx response into out (when non-nil).
// Non-2xx responses become *UpstreamError with the body verbatim; credential failures
// surface as *AuthError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Authorize != nil {
		auth, err := c.Authorize(ctx)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				return err
			}
			return &AuthError{Provider: c.Provider, Cause: err}
		}
		req.Header.Set("Authorization", auth)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Provider: c.Provider, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &UpstreamError{Provider: c.Provider, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("provider request failed",
			"provider", c.Provider,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", truncate(string(raw), timeout.MaxTruncateLength),
		)
		return &UpstreamError{Provider: c.Provider, Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Provider: c.Provider, Status: resp.StatusCode, Body: string(raw), Cause: err}
	}
	return nil
}

// IsStatus reports whether err is an *UpstreamError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Status == status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
