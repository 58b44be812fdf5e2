package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCallbackHandler(t *testing.T) {
	get := func(handler http.Handler, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	t.Run("delivers the authorization code", func(t *testing.T) {
		handler := NewCallbackHandler("state123")

		rec := get(handler, "/callback?code=abc&state=state123")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected the success page")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Code != "abc" {
			t.Errorf("code = %q, want %q", result.Code, "abc")
		}
	})

	t.Run("rejects a mismatched state", func(t *testing.T) {
		handler := NewCallbackHandler("state123")

		rec := get(handler, "/callback?code=abc&state=wrong")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Fatal("expected a state validation error")
		}
		if result.Code != "" {
			t.Errorf("code must not be delivered, got %q", result.Code)
		}
	})

	t.Run("surfaces the provider error parameters", func(t *testing.T) {
		handler := NewCallbackHandler("state123")

		rec := get(handler, "/callback?state=state123&error=access_denied&error_description=User+declined")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Fatal("expected an authorization error")
		}
		if !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("error should name the provider code: %v", result.Error())
		}
	})

	t.Run("ignores a replayed redirect", func(t *testing.T) {
		handler := NewCallbackHandler("state123")

		first := get(handler, "/callback?code=abc&state=state123")
		if first.Code != http.StatusOK {
			t.Fatalf("first redirect status = %d, want 200", first.Code)
		}

		replay := get(handler, "/callback?code=evil&state=state123")
		if replay.Code != http.StatusBadRequest {
			t.Fatalf("replay status = %d, want 400", replay.Code)
		}

		result, open := <-handler.Result()
		if !open {
			t.Fatal("expected the original result before close")
		}
		if result.Code != "abc" {
			t.Errorf("code = %q, want the first delivery", result.Code)
		}
		if _, open := <-handler.Result(); open {
			t.Error("result channel should be closed after one delivery")
		}
	})

	t.Run("registers the callback route", func(t *testing.T) {
		handler := NewCallbackHandler("s")
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("routes = %v", routes)
		}
	})
}
