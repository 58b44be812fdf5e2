package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pixelpusher829/jammming/internal/server"
	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the token exchange service until the context is cancelled.
//
// The service is the only place the client secret and refresh tokens live;
// the CLI and any other client talk to it over /token/public and /token/user.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}

	spotify := r.config.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return fmt.Errorf("%w: credentials.spotify.client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	exchange := server.NewExchangeHandler(server.ExchangeConfig{
		ClientID:     spotify.ClientID,
		ClientSecret: spotify.ClientSecret,
		RedirectURI:  spotify.RedirectURI,
		CookieKey:    r.config.Auth.CookieKey,
		Insecure:     cmd.Bool("insecure"),
	}, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(exchange)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("token exchange service listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	r.logger.Info("token exchange service stopped")
	return nil
}
