package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultProviderTokenURL = "https://accounts.spotify.com/api/token"

	// refreshCookieName is the HttpOnly cookie carrying the refresh token.
	// Client code never reads it; this is the trust boundary.
	refreshCookieName = "spotify_refresh_token"

	refreshCookieMaxAge = 60 * 60 * 24 * 30 // 30 days
)

// ExchangeConfig configures the token exchange handler.
type ExchangeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// ProviderTokenURL defaults to the Spotify accounts token endpoint.
	ProviderTokenURL string
	// CookieKey signs the refresh token cookie.
	CookieKey string
	// Insecure disables the cookie Secure attribute for local development.
	Insecure bool
	// HTTPClient overrides the upstream client. Test hook.
	HTTPClient *http.Client
}

// ExchangeHandler proxies token requests to the music provider, keeping the
// client secret and the refresh token server-side.
//
// Two logical operations are exposed, both HTTPS POST with JSON bodies:
// /token/public (client-credentials grant) and /token/user (code exchange,
// cookie-borne refresh, or an explicit refreshToken fallback).
type ExchangeHandler struct {
	config     ExchangeConfig
	cookies    *sessions.CookieStore
	public     *clientcredentials.Config
	httpClient *http.Client
	logger     *log.Logger
}

// userTokenRequest is the /token/user body. Exactly one authorization
// context applies per request; the handler decides which from the fields
// present and the cookie.
type userTokenRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	CodeVerifier      string `json:"codeVerifier"`
	RefreshToken      string `json:"refreshToken"`
}

// providerTokenResponse is the subset of the provider's token payload the
// handler forwards or stores.
type providerTokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// NewExchangeHandler creates the exchange handler. The logger must not be nil.
func NewExchangeHandler(config ExchangeConfig, logger *log.Logger) *ExchangeHandler {
	if config.ProviderTokenURL == "" {
		config.ProviderTokenURL = defaultProviderTokenURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	cookies := sessions.NewCookieStore([]byte(config.CookieKey))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   refreshCookieMaxAge,
		HttpOnly: true,
		Secure:   !config.Insecure,
		SameSite: http.SameSiteStrictMode,
	}

	return &ExchangeHandler{
		config:  config,
		cookies: cookies,
		public: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.ProviderTokenURL,
		},
		httpClient: config.HTTPClient,
		logger:     logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ExchangeHandler) Routes() []string {
	return []string{"/token/public", "/token/user"}
}

// ServeHTTP dispatches the two token operations.
func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed",
			"This endpoint only supports POST requests.")
		return
	}

	if h.config.ClientID == "" || h.config.ClientSecret == "" {
		h.logger.Error("missing provider client ID or secret")
		writeJSONError(w, http.StatusInternalServerError, "Server configuration error",
			"Spotify credentials missing.")
		return
	}

	switch r.URL.Path {
	case "/token/public":
		h.handlePublic(w, r)
	case "/token/user":
		h.handleUser(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handlePublic performs the client-credentials grant.
func (h *ExchangeHandler) handlePublic(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, h.httpClient)

	token, err := h.public.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			h.logger.Warn("provider rejected client-credentials grant", "status", retrieveErr.Response.StatusCode)
			writeJSON(w, retrieveErr.Response.StatusCode, json.RawMessage(retrieveErr.Body))
			return
		}
		h.logger.Error("client-credentials grant failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error",
			"Failed to get public access token.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token.AccessToken})
}

// handleUser performs a code exchange or a refresh.
//
// Request bodies hold exactly one authorization context: {authorizationCode,
// codeVerifier}, {} with the refresh token arriving via cookie, or a
// {refreshToken} fallback. A code exchange without a verifier is a 400; the
// caller must restart the login flow.
func (h *ExchangeHandler) handleUser(w http.ResponseWriter, r *http.Request) {
	var body userTokenRequest
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		// Tolerate malformed bodies the way an empty one is tolerated.
		_ = json.Unmarshal(data, &body)
	}

	cookieToken := h.refreshTokenFromCookie(r)

	form := url.Values{}
	isRefresh := false

	switch {
	case body.AuthorizationCode != "":
		if body.CodeVerifier == "" {
			writeJSONError(w, http.StatusBadRequest, "Bad Request", "Missing code_verifier for PKCE.")
			return
		}
		form.Set("grant_type", "authorization_code")
		form.Set("code", body.AuthorizationCode)
		form.Set("redirect_uri", h.config.RedirectURI)
		form.Set("code_verifier", body.CodeVerifier)

	case cookieToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", cookieToken)
		isRefresh = true

	case body.RefreshToken != "":
		// Fallback for callers without cookie support.
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", body.RefreshToken)
		isRefresh = true

	default:
		writeJSONError(w, http.StatusBadRequest, "Bad Request", "Missing authorizationCode or session cookie.")
		return
	}

	status, payload, err := h.callProvider(r.Context(), form)
	if err != nil {
		h.logger.Error("provider token request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	if status < 200 || status >= 300 {
		if isRefresh {
			// The refresh token is dead; clear the cookie so the client
			// falls back to a fresh login.
			h.clearRefreshCookie(w, r)
		}
		writeJSON(w, status, json.RawMessage(payload))
		return
	}

	var token providerTokenResponse
	if err := json.Unmarshal(payload, &token); err != nil {
		h.logger.Error("failed to decode provider response", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Malformed provider response.")
		return
	}

	rotated := token.RefreshToken
	if rotated == "" {
		rotated = cookieToken
	}
	if rotated == "" {
		rotated = body.RefreshToken
	}
	if rotated != "" {
		h.setRefreshCookie(w, r, rotated)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token.AccessToken,
		"expires_in":   token.ExpiresIn,
	})
}

// callProvider posts the grant form to the provider token endpoint with
// Basic client authentication, returning the upstream status and body.
func (h *ExchangeHandler) callProvider(ctx context.Context, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.ProviderTokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(h.config.ClientID, h.config.ClientSecret)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	return resp.StatusCode, payload, nil
}

func (h *ExchangeHandler) refreshTokenFromCookie(r *http.Request) string {
	session, err := h.cookies.Get(r, refreshCookieName)
	if err != nil {
		// A tampered or stale cookie is treated as absent.
		return ""
	}
	token, _ := session.Values["refresh_token"].(string)
	return token
}

func (h *ExchangeHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, token string) {
	session, _ := h.cookies.New(r, refreshCookieName)
	session.Values["refresh_token"] = token
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to set refresh cookie", "error", err)
	}
}

func (h *ExchangeHandler) clearRefreshCookie(w http.ResponseWriter, r *http.Request) {
	session, _ := h.cookies.Get(r, refreshCookieName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to clear refresh cookie", "error", err)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes the {error, message} envelope the exchange
// endpoints use for all failures.
func writeJSONError(w http.ResponseWriter, status int, errText, message string) {
	writeJSON(w, status, map[string]string{"error": errText, "message": message})
}
