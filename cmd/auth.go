package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pixelpusher829/jammming/internal/auth"
	"github.com/pixelpusher829/jammming/internal/server"
	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser authorization flow and bootstraps a user session.
//
// Starts a local HTTP server on the redirect URI, opens the browser for user
// authorization, then hands the returned code to the session manager for the
// verifier-bound token exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}

	if r.config.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: credentials.spotify.client_id must be set in config.toml", shared.ErrMissingCredentials)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	authURL, err := r.manager.Login(state)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	callback := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(callback)

	addr, err := callbackAddr(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: addr, Handler: router}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("waiting for authorization redirect", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callback.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	r.manager.Bootstrap(ctx, result.Code)
	if !r.manager.LoggedIn() {
		return shared.ErrTokenAcquisition
	}

	r.writePlainln("✓ Signed in to Spotify")
	if profile, err := r.catalog.UserProfile(ctx); err == nil {
		r.writePlain("Welcome, %s!\n", profile.DisplayName)
	}
	return nil
}

// AuthLogout discards the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}

	r.manager.Logout()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the stored session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}

	session, ok := auth.LoadSession(r.store)
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"logged_in":  ok && session.LoggedIn,
			"expires_at": session.ExpiresAt,
		}, true)
	}

	if !ok || !session.LoggedIn {
		return r.writePlain("✗ Not signed in\nRun 'jammming auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in\n")
	expiry := time.UnixMilli(session.ExpiresAt)
	if time.Now().After(expiry) {
		r.writePlain("Token: expired, will refresh on next use\n")
	} else {
		r.writePlain("Token: valid until %s\n", expiry.Format(time.RFC3339))
	}
	return nil
}

// callbackAddr derives the listen address from the configured redirect URI.
func callbackAddr(redirectURI string) (string, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect URI: %v", shared.ErrInvalidConfig, err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := parsed.Port()
	if port == "" {
		port = "80"
	}
	return fmt.Sprintf("%s:%s", host, port), nil
}
