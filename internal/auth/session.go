package auth

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// expirySkew is subtracted from the provider-reported lifetime so a
	// token is refreshed before clock drift or request latency can make
	// an apparently valid token fail upstream.
	expirySkew = 5 * time.Minute

	// watchInterval is the period of the background expiry check, the
	// sole ambient trigger for token acquisition.
	watchInterval = 5 * time.Minute

	defaultAuthorizeURL = "https://accounts.spotify.com/authorize"
)

// LoginConfig holds what Login needs to build the provider authorize URL.
type LoginConfig struct {
	ClientID     string
	RedirectURI  string
	Scopes       string
	AuthorizeURL string // defaults to the Spotify accounts endpoint
}

// Manager owns the in-memory Session and public token, mirrored to a
// [Store] for reload survival. All token state transitions go through the
// Manager; other components only read tokens or trigger a refresh.
type Manager struct {
	store    Store
	exchange *ExchangeClient
	login    LoginConfig
	logger   *log.Logger

	// now and random are injection points for tests.
	now    func() time.Time
	random io.Reader

	mu                 sync.Mutex
	session            *Session
	publicToken        string
	acquiring          bool
	bootstrapRefreshed bool
	refreshDone        chan struct{} // non-nil while a refresh is in flight
}

// NewManager wires a Manager. logger must not be nil; store and exchange
// are required.
func NewManager(store Store, exchange *ExchangeClient, login LoginConfig, logger *log.Logger) *Manager {
	if login.AuthorizeURL == "" {
		login.AuthorizeURL = defaultAuthorizeURL
	}
	return &Manager{
		store:    store,
		exchange: exchange,
		login:    login,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// SetRandom overrides the PKCE random source. Test hook.
func (m *Manager) SetRandom(r io.Reader) { m.random = r }

// UserToken returns the held user access token, or "".
func (m *Manager) UserToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}

// PublicToken returns the held client-credentials token, or "".
func (m *Manager) PublicToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publicToken
}

// LoggedIn reports whether a user session is currently held.
func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.LoggedIn
}

// AcquirePublicToken fetches a client-credentials token from the exchange
// service. On any failure the public token is cleared and "" returned;
// acquisition failures are logged, never raised.
func (m *Manager) AcquirePublicToken(ctx context.Context) string {
	token, err := m.exchange.PublicToken(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.logger.Warn("failed to acquire public token", "error", err)
		m.publicToken = ""
		return ""
	}
	m.publicToken = token
	return token
}

// ExchangeCode trades an authorization code plus the stored PKCE verifier
// for a user session. Without a stored verifier the callback is stale and
// the exchange aborts before any network call; this also makes redelivery
// of an already-consumed code a no-op. A failed exchange clears the
// session and fully resets the store, since no recoverable state remains.
func (m *Manager) ExchangeCode(ctx context.Context, code string) string {
	verifier, ok := m.store.Get(KeyCodeVerifier)
	if !ok || verifier == "" {
		m.logger.Debug("no code verifier stored, skipping exchange")
		return ""
	}

	resp, err := m.exchange.UserToken(ctx, &ExchangeRequest{
		AuthorizationCode: code,
		CodeVerifier:      verifier,
	})
	if err != nil {
		m.logger.Warn("code exchange failed", "error", err)
		m.clearSession(true)
		return ""
	}

	if err := m.store.Delete(KeyCodeVerifier); err != nil {
		m.logger.Warn("failed to delete code verifier", "error", err)
	}
	m.saveSession(resp.AccessToken, resp.ExpiresIn)
	return resp.AccessToken
}

// RefreshUserToken exchanges the cookie-borne refresh token for a new user
// session. Concurrent callers coalesce onto a single in-flight refresh and
// all observe its outcome. Failure clears the session.
func (m *Manager) RefreshUserToken(ctx context.Context) string {
	m.mu.Lock()
	if m.refreshDone != nil {
		done := m.refreshDone
		m.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ""
		}
		return m.UserToken()
	}
	done := make(chan struct{})
	m.refreshDone = done
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshDone = nil
		m.mu.Unlock()
		close(done)
	}()

	resp, err := m.exchange.UserToken(ctx, nil)
	if err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		m.clearSession(false)
		return ""
	}

	m.saveSession(resp.AccessToken, resp.ExpiresIn)
	return resp.AccessToken
}

// Login generates a PKCE pair, persists the verifier and returns the
// provider authorize URL for the given CSRF state. The navigation itself
// (browser open, callback wait) belongs to the caller; success never
// produces a token here.
func (m *Manager) Login(state string) (string, error) {
	verifier, err := GenerateVerifier(m.random, DefaultVerifierLength)
	if err != nil {
		return "", err
	}
	if err := m.store.Set(KeyCodeVerifier, verifier); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", m.login.ClientID)
	params.Set("scope", m.login.Scopes)
	params.Set("code_challenge_method", "S256")
	params.Set("code_challenge", DeriveChallenge(verifier))
	params.Set("redirect_uri", m.login.RedirectURI)
	params.Set("state", state)

	return m.login.AuthorizeURL + "?" + params.Encode(), nil
}

// Logout clears the session deterministically, in memory and in the store.
func (m *Manager) Logout() {
	m.clearSession(false)
}

// Bootstrap runs the load-time decision policy once. code carries an
// authorization code delivered by the login callback, or "".
//
//  1. Code present and no user token held: exchange it.
//  2. Durable storage holds a non-expired user token: restore without
//     any network call.
//  3. Storage says logged in but the token is missing or expired: refresh,
//     at most once per process, to avoid refresh loops on persistent
//     failure.
//  4. No user token and no public token: acquire a public token.
//
// An acquiring guard makes overlapping Bootstrap calls no-ops.
func (m *Manager) Bootstrap(ctx context.Context, code string) {
	m.mu.Lock()
	if m.acquiring {
		m.mu.Unlock()
		return
	}
	m.acquiring = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.acquiring = false
		m.mu.Unlock()
	}()

	if code != "" && m.UserToken() == "" {
		m.ExchangeCode(ctx, code)
		return
	}

	stored, ok := LoadSession(m.store)
	nowMS := m.now().UnixMilli()

	if ok && stored.AccessToken != "" && stored.ExpiresAt > nowMS {
		m.mu.Lock()
		s := stored
		m.session = &s
		m.mu.Unlock()
		return
	}

	if ok && stored.LoggedIn {
		m.mu.Lock()
		attempted := m.bootstrapRefreshed
		m.bootstrapRefreshed = true
		m.mu.Unlock()
		if !attempted {
			m.RefreshUserToken(ctx)
		}
		return
	}

	if m.UserToken() == "" && m.PublicToken() == "" {
		m.AcquirePublicToken(ctx)
	}
}

// Watch checks every watchInterval whether the held user token has expired
// and refreshes it if so. Blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			expired := m.session != nil && m.session.ExpiresAt < m.now().UnixMilli()
			m.mu.Unlock()
			if expired {
				m.RefreshUserToken(ctx)
			}
		}
	}
}

// saveSession persists a fresh user token with the safety skew applied and
// installs it as the in-memory session.
func (m *Manager) saveSession(token string, expiresIn int) {
	expiresAt := m.now().UnixMilli() + int64(expiresIn)*1000 - expirySkew.Milliseconds()
	session := Session{AccessToken: token, ExpiresAt: expiresAt, LoggedIn: true}

	if err := m.store.SaveSession(session); err != nil {
		m.logger.Warn("failed to persist session", "error", err)
	}

	m.mu.Lock()
	m.session = &session
	m.mu.Unlock()
}

// clearSession drops the in-memory session and its stored mirror. fullReset
// additionally wipes every stored key, used after a failed code exchange.
func (m *Manager) clearSession(fullReset bool) {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	var err error
	if fullReset {
		err = m.store.Reset()
	} else {
		err = m.store.ClearSession()
	}
	if err != nil {
		m.logger.Warn("failed to clear stored session", "error", err)
	}
}
