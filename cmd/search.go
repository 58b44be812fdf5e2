package main

import (
	"context"
	"fmt"

	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog and caches the hits for later 'playlist add'.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}

	r.manager.Bootstrap(ctx, "")

	r.logger.Infof("searching catalog for %q", query)

	tracks, err := r.catalog.SearchTracks(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if r.cache != nil {
		if err := r.cache.PutAll(tracks); err != nil {
			r.logger.Warn("failed to cache search results", "error", err)
		}
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found for %q\n", query)
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, t := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, t.Artist, t.Title)
		if t.Album != "" {
			r.writePlain("   Album: %s\n", t.Album)
		}
		r.writePlain("   ID: %s\n\n", t.ID)
	}
	r.writePlain("Add one with: jammming playlist add <draft-id> <track-id>\n")

	return nil
}
