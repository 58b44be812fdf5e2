package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pixelpusher829/jammming/internal/shared"
)

// fakeProvider stands in for the Spotify accounts token endpoint.
type fakeProvider struct {
	server   *httptest.Server
	lastForm map[string]string
	status   int
	body     string
}

func newFakeProvider() *fakeProvider {
	f := &fakeProvider{
		status: http.StatusOK,
		body:   `{"access_token":"at1","expires_in":3600,"refresh_token":"rt1"}`,
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		f.lastForm = map[string]string{}
		for k := range r.PostForm {
			f.lastForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		io.WriteString(w, f.body)
	}))
	return f
}

func newTestExchange(t *testing.T, provider *fakeProvider) *ExchangeHandler {
	t.Helper()
	t.Cleanup(provider.server.Close)
	return NewExchangeHandler(ExchangeConfig{
		ClientID:         "cid",
		ClientSecret:     "secret",
		RedirectURI:      "http://127.0.0.1:9090/callback",
		ProviderTokenURL: provider.server.URL,
		CookieKey:        "test-cookie-key",
		Insecure:         true,
		HTTPClient:       provider.server.Client(),
	}, shared.NewLogger(io.Discard))
}

func postJSON(handler http.Handler, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
	return out
}

func TestExchangeHandler(t *testing.T) {
	t.Run("rejects non-POST with a JSON 405", func(t *testing.T) {
		handler := newTestExchange(t, newFakeProvider())

		req := httptest.NewRequest(http.MethodGet, "/token/user", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", rec.Code)
		}
		envelope := decodeEnvelope(t, rec)
		if envelope["error"] != "Method Not Allowed" {
			t.Errorf("unexpected envelope: %v", envelope)
		}
	})

	t.Run("missing credentials is a 500", func(t *testing.T) {
		handler := NewExchangeHandler(ExchangeConfig{
			ProviderTokenURL: "http://127.0.0.1:1",
			CookieKey:        "k",
		}, shared.NewLogger(io.Discard))

		rec := postJSON(handler, "/token/user", `{}`, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		envelope := decodeEnvelope(t, rec)
		if envelope["error"] != "Server configuration error" {
			t.Errorf("unexpected envelope: %v", envelope)
		}
	})

	t.Run("code without verifier is a 400", func(t *testing.T) {
		handler := newTestExchange(t, newFakeProvider())

		rec := postJSON(handler, "/token/user", `{"authorizationCode":"abc"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no grant context at all is a 400", func(t *testing.T) {
		handler := newTestExchange(t, newFakeProvider())

		rec := postJSON(handler, "/token/user", `{}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("code exchange forwards the PKCE grant and sets the cookie", func(t *testing.T) {
		provider := newFakeProvider()
		handler := newTestExchange(t, provider)

		rec := postJSON(handler, "/token/user", `{"authorizationCode":"abc","codeVerifier":"v1"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
		}

		if provider.lastForm["grant_type"] != "authorization_code" {
			t.Errorf("grant_type = %q", provider.lastForm["grant_type"])
		}
		if provider.lastForm["code"] != "abc" || provider.lastForm["code_verifier"] != "v1" {
			t.Errorf("unexpected form: %v", provider.lastForm)
		}

		envelope := decodeEnvelope(t, rec)
		if envelope["access_token"] != "at1" {
			t.Errorf("access_token = %v", envelope["access_token"])
		}
		if _, hasRefresh := envelope["refresh_token"]; hasRefresh {
			t.Error("refresh token must never appear in the response body")
		}

		cookies := rec.Result().Cookies()
		var refresh *http.Cookie
		for _, c := range cookies {
			if c.Name == refreshCookieName {
				refresh = c
			}
		}
		if refresh == nil {
			t.Fatal("expected a refresh token cookie")
		}
		if !refresh.HttpOnly {
			t.Error("refresh cookie must be HttpOnly")
		}
		if refresh.SameSite != http.SameSiteStrictMode {
			t.Error("refresh cookie must be SameSite=Strict")
		}
		if refresh.MaxAge != refreshCookieMaxAge {
			t.Errorf("cookie MaxAge = %d, want %d", refresh.MaxAge, refreshCookieMaxAge)
		}
	})

	t.Run("empty body with cookie performs a refresh", func(t *testing.T) {
		provider := newFakeProvider()
		handler := newTestExchange(t, provider)

		// Seed a cookie via a code exchange first.
		seeded := postJSON(handler, "/token/user", `{"authorizationCode":"abc","codeVerifier":"v1"}`, nil)
		cookies := seeded.Result().Cookies()

		rec := postJSON(handler, "/token/user", `{}`, cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
		}
		if provider.lastForm["grant_type"] != "refresh_token" {
			t.Errorf("grant_type = %q", provider.lastForm["grant_type"])
		}
		if provider.lastForm["refresh_token"] != "rt1" {
			t.Errorf("refresh_token = %q", provider.lastForm["refresh_token"])
		}
	})

	t.Run("body refreshToken is a fallback without cookie", func(t *testing.T) {
		provider := newFakeProvider()
		handler := newTestExchange(t, provider)

		rec := postJSON(handler, "/token/user", `{"refreshToken":"body-rt"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if provider.lastForm["refresh_token"] != "body-rt" {
			t.Errorf("refresh_token = %q", provider.lastForm["refresh_token"])
		}
	})

	t.Run("failed refresh clears the cookie and forwards the status", func(t *testing.T) {
		provider := newFakeProvider()
		handler := newTestExchange(t, provider)

		seeded := postJSON(handler, "/token/user", `{"authorizationCode":"abc","codeVerifier":"v1"}`, nil)
		cookies := seeded.Result().Cookies()

		provider.status = http.StatusBadRequest
		provider.body = `{"error":"invalid_grant"}`

		rec := postJSON(handler, "/token/user", `{}`, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		var cleared *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == refreshCookieName {
				cleared = c
			}
		}
		if cleared == nil {
			t.Fatal("expected a cookie-clearing Set-Cookie header")
		}
		if cleared.MaxAge >= 0 {
			t.Errorf("cookie MaxAge = %d, want negative", cleared.MaxAge)
		}
	})

	t.Run("malformed JSON body is tolerated like an empty one", func(t *testing.T) {
		handler := newTestExchange(t, newFakeProvider())

		rec := postJSON(handler, "/token/user", `{not json`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for no grant context", rec.Code)
		}
	})

	t.Run("public token endpoint returns provider token", func(t *testing.T) {
		provider := newFakeProvider()
		provider.body = `{"access_token":"public-at","expires_in":3600,"token_type":"Bearer"}`
		handler := newTestExchange(t, provider)

		rec := postJSON(handler, "/token/public", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
		}
		envelope := decodeEnvelope(t, rec)
		if envelope["access_token"] != "public-at" {
			t.Errorf("access_token = %v", envelope["access_token"])
		}
		if provider.lastForm["grant_type"] != "client_credentials" {
			t.Errorf("grant_type = %q", provider.lastForm["grant_type"])
		}
	})
}
