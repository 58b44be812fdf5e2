package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// TokenResponse is the exchange service's success payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeRequest is the body of a code exchange. Refresh requests send an
// empty JSON object instead; the refresh token travels via cookie.
type ExchangeRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	CodeVerifier      string `json:"codeVerifier"`
}

// ExchangeClient talks to the token exchange service.
//
// The client's cookie jar carries the HttpOnly refresh token cookie between
// requests; no caller of this type ever sees the refresh token itself.
type ExchangeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewExchangeClient creates a client for the exchange service at baseURL.
// A nil http.Client gets a default with a 30s timeout. The client must
// carry a cookie jar to hold the refresh token between requests; a
// jar-less client is copied and given one, leaving the caller's client
// untouched.
func NewExchangeClient(baseURL string, client *http.Client) *ExchangeClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		withJar := *client
		withJar.Jar = jar
		client = &withJar
	}
	return &ExchangeClient{baseURL: baseURL, httpClient: client}
}

// PublicToken requests a client-credentials token. POST /token/public, no body.
func (c *ExchangeClient) PublicToken(ctx context.Context) (string, error) {
	resp, err := c.post(ctx, "/token/public", nil)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// UserToken posts to /token/user. body is either an [ExchangeRequest] or
// nil for a cookie-borne refresh.
func (c *ExchangeClient) UserToken(ctx context.Context, body *ExchangeRequest) (*TokenResponse, error) {
	var payload any
	if body != nil {
		payload = body
	} else {
		payload = struct{}{}
	}
	return c.post(ctx, "/token/user", payload)
}

func (c *ExchangeClient) post(ctx context.Context, path string, body any) (*TokenResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token exchange failed: status %d - %s", resp.StatusCode, string(data))
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode exchange response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned no access token")
	}

	return &token, nil
}
