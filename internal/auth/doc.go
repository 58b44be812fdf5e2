// Package auth implements the token lifecycle for the Jammming client.
//
// Two token types are managed: a public client-credentials token for
// unauthenticated catalog browsing, and a user token obtained through a
// PKCE authorization-code exchange with refresh support. The refresh token
// itself never enters this package: it lives in an HttpOnly cookie held
// by the token exchange service and travels through the [ExchangeClient]'s
// cookie jar.
//
// # Components
//
//   - PKCE helpers: [GenerateVerifier] and [DeriveChallenge]
//   - [Store] : durable key/value session storage (sqlite, keyring or memory)
//   - [ExchangeClient] : HTTP client for the token exchange service
//   - [Manager] : owns Session and public token state, orchestrates
//     acquisition, code exchange, refresh, login and logout, and runs the
//     startup decision policy plus the periodic expiry watcher
//
// The [Manager] never returns errors for acquisition failures: a failed
// acquisition clears the affected token and yields an empty string. Only
// the request client (internal/client) surfaces auth errors to callers.
package auth
