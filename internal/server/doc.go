// Package server provides HTTP routing, the token exchange endpoints, and
// the login callback handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Token Exchange
//
// [ExchangeHandler] is the edge between client code and the music provider.
// It holds the application's client secret and the user's refresh token;
// neither ever reaches the client. POST /token/public performs a
// client-credentials grant for browse-only access. POST /token/user either
// exchanges a PKCE authorization code or refreshes a session, with the
// refresh token carried in a signed HttpOnly cookie that is rotated on
// every successful response and cleared when a refresh is rejected.
//
// # Login Callback
//
// [CallbackHandler] receives the provider's authorization redirect during
// the CLI login flow. It validates the state parameter (CSRF protection)
// and delivers the authorization code through a channel; the exchange
// itself is the session manager's job. It only processes one callback to
// prevent replay attacks.
package server
