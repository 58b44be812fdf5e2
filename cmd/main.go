package main

import (
	"context"
	"errors"
	"os"

	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:     "jammming",
		Usage:    "Build Spotify playlists from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrSessionExpired) {
			logger.Error("session expired, run 'jammming auth login' to sign in again")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
