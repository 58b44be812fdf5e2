// Package client implements the authenticated request layer over the
// provider API. It selects the strongest available token, retries exactly
// once after recovering from an auth failure, and surfaces everything else
// as typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pixelpusher829/jammming/internal/shared"
	"golang.org/x/time/rate"
)

// TokenProvider is the slice of the auth Manager this package needs: read
// the held tokens, trigger a recovery for whichever kind failed, and drop
// the session when recovery is exhausted.
type TokenProvider interface {
	UserToken() string
	PublicToken() string
	RefreshUserToken(ctx context.Context) string
	AcquirePublicToken(ctx context.Context) string
	Logout()
}

// Client issues bearer-authenticated JSON requests against the provider
// API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Opts configures a Client. Zero-value fields get defaults.
type Opts struct {
	BaseURL           string
	HTTPClient        *http.Client
	Tokens            TokenProvider
	RequestsPerSecond float64
	Logger            *log.Logger
}

// New creates a request client. Tokens and Logger are required.
func New(opts Opts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.spotify.com/v1"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// tokenKind records which credential an attempt used, which determines the
// recovery path on an auth failure.
type tokenKind int

const (
	tokenNone tokenKind = iota
	tokenUser
	tokenPublic
)

// attempt is one HTTP round trip's outcome.
type attempt struct {
	status int
	body   []byte
	used   tokenKind
}

// Do issues method path against the API. A 2xx response with an empty body
// yields nil; otherwise the raw JSON body is returned.
//
// The call runs as an explicit two-step machine: attempt, classify, recover
// the failed credential once, retry once, terminal. A second auth failure
// yields [shared.ErrSessionExpired] (user token) or
// [shared.ErrTokenAcquisition] (public token); on the user path the
// session is cleared either way, by the failed refresh or by an explicit
// logout when the retried request is rejected. Any other non-2xx after
// the retry budget is a [shared.HTTPError].
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token, used := c.selectToken()

	first, err := c.perform(ctx, method, path, body, token, used)
	if err != nil {
		return nil, err
	}

	if !shared.IsAuthStatus(first.status) {
		return c.finish(first)
	}

	switch first.used {
	case tokenUser:
		newToken := c.tokens.RefreshUserToken(ctx)
		if newToken == "" {
			return nil, fmt.Errorf("%w: refresh after %d response failed", shared.ErrSessionExpired, first.status)
		}
		retry, err := c.perform(ctx, method, path, body, newToken, tokenUser)
		if err != nil {
			return nil, err
		}
		if shared.IsAuthStatus(retry.status) {
			// The refreshed token was rejected too. Drop the dead
			// session so later calls demote to the public state instead
			// of looping through refresh again.
			c.tokens.Logout()
			return nil, fmt.Errorf("%w: retried request rejected with status %d", shared.ErrSessionExpired, retry.status)
		}
		return c.finish(retry)

	case tokenPublic:
		newToken := c.tokens.AcquirePublicToken(ctx)
		if newToken == "" {
			return nil, fmt.Errorf("%w: public token reacquisition failed", shared.ErrTokenAcquisition)
		}
		retry, err := c.perform(ctx, method, path, body, newToken, tokenPublic)
		if err != nil {
			return nil, err
		}
		if shared.IsAuthStatus(retry.status) {
			return nil, fmt.Errorf("%w: retried request rejected with status %d", shared.ErrTokenAcquisition, retry.status)
		}
		return c.finish(retry)

	default:
		// Unauthenticated attempt; nothing to recover.
		return c.finish(first)
	}
}

// Get issues a GET and decodes the response into out (ignored when out is
// nil or the body is empty).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.decode(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.decode(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.decode(ctx, http.MethodPut, path, body, out)
}

func (c *Client) decode(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// selectToken picks the user token when present, else the public token,
// else proceeds unauthenticated.
func (c *Client) selectToken() (string, tokenKind) {
	if token := c.tokens.UserToken(); token != "" {
		return token, tokenUser
	}
	if token := c.tokens.PublicToken(); token != "" {
		return token, tokenPublic
	}
	return "", tokenNone
}

// perform executes a single HTTP round trip. Transport and body-read
// failures are transient network errors, surfaced without retry.
func (c *Client) perform(ctx context.Context, method, path string, body any, token string, used tokenKind) (*attempt, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", shared.ErrAPIRequest, err)
	}

	return &attempt{status: resp.StatusCode, body: data, used: used}, nil
}

// finish maps a terminal attempt to the caller-visible result.
func (c *Client) finish(a *attempt) (json.RawMessage, error) {
	if a.status < 200 || a.status >= 300 {
		return nil, &shared.HTTPError{Status: a.status, Body: string(a.body)}
	}
	if len(bytes.TrimSpace(a.body)) == 0 {
		return nil, nil
	}
	return json.RawMessage(a.body), nil
}
