package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pixelpusher829/jammming/internal/formatter"
	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/pixelpusher829/jammming/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistNew creates an empty draft playlist.
func (r *Runner) PlaylistNew(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: a draft name is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft := &models.Draft{
		DraftID: shared.GenerateID(),
		Name:    name,
	}
	if err := r.drafts.Create(draft); err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	r.writePlain("✓ Created draft '%s'\n", name)
	r.writePlain("ID: %s\n", draft.DraftID)
	return nil
}

// PlaylistList lists all local drafts.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	drafts, err := r.drafts.List()
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(drafts, true)
	}

	if len(drafts) == 0 {
		return r.writePlain("No drafts yet. Create one with: jammming playlist new <name>\n")
	}

	r.writePlain("Found %d drafts:\n\n", len(drafts))
	for i, d := range drafts {
		r.writePlain("%d. %s\n", i+1, d.Name)
		r.writePlain("   ID: %s\n", d.DraftID)
		r.writePlain("   Tracks: %d\n", len(d.Tracks))
		if d.SpotifyID != "" {
			r.writePlain("   Spotify: %s\n", d.SpotifyID)
		}
		r.writePlain("\n")
	}
	return nil
}

// PlaylistShow prints a draft's tracklist.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a draft ID is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(draft, true)
	}

	r.writePlain("Draft: %s\n", draft.Name)
	if draft.SpotifyID != "" {
		r.writePlain("Spotify: %s\n", draft.SpotifyID)
	}
	r.writePlain("Tracks: %d\n\n", len(draft.Tracks))
	for i, t := range draft.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, t.Artist, t.Title)
		if t.Album != "" {
			r.writePlain("   Album: %s\n", t.Album)
		}
	}
	return nil
}

// PlaylistAdd appends a cached track to a draft.
//
// The track must have appeared in a recent 'search'; the local track cache
// is the lookup source, so no network request is made.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	trackID := cmd.StringArg("track")
	if id == "" || trackID == "" {
		return fmt.Errorf("%w: draft ID and track ID are required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}

	if draft.Contains(trackID) {
		return r.writePlain("Track already in draft '%s'\n", draft.Name)
	}

	track, err := r.cache.Get(trackID)
	if err != nil {
		return err
	}
	if track == nil {
		return fmt.Errorf("%w: track %s not in the local cache, search for it first", shared.ErrInvalidArgument, trackID)
	}

	draft.Tracks = append(draft.Tracks, *track)
	if err := r.drafts.Update(draft); err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return r.writePlain("✓ Added %s - %s to '%s' (%d tracks)\n", track.Artist, track.Title, draft.Name, len(draft.Tracks))
}

// PlaylistRemove drops a track from a draft.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	trackID := cmd.StringArg("track")
	if id == "" || trackID == "" {
		return fmt.Errorf("%w: draft ID and track ID are required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}

	if !draft.Contains(trackID) {
		return fmt.Errorf("%w: track %s is not in draft '%s'", shared.ErrInvalidArgument, trackID, draft.Name)
	}

	kept := draft.Tracks[:0]
	for _, t := range draft.Tracks {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	draft.Tracks = kept

	if err := r.drafts.Update(draft); err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return r.writePlain("✓ Removed track from '%s' (%d tracks)\n", draft.Name, len(draft.Tracks))
}

// PlaylistRename changes a draft's name. The Spotify playlist catches up on
// the next save.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	name := cmd.StringArg("name")
	if id == "" || name == "" {
		return fmt.Errorf("%w: draft ID and new name are required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}

	old := draft.Name
	draft.Name = name
	if err := r.drafts.Update(draft); err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return r.writePlain("✓ Renamed '%s' to '%s'\n", old, name)
}

// PlaylistDelete removes a local draft. The published playlist, if any, stays.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a draft ID is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	if err := r.drafts.Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Draft deleted\n")
}

// PlaylistExport writes a draft's tracklist to a local file.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a draft ID is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(draft, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported tracks to %s\n", result.TracksFile)
		r.writePlain("✓ Exported metadata to %s\n", result.MetadataFile)
	case "md":
		file, err := formatter.WriteMarkdownExport(draft, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", file)
	case "txt":
		file, err := formatter.WriteTextExport(draft, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", file)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, cmd.String("format"))
	}
	return nil
}

// PlaylistSave publishes a draft to Spotify, printing engine progress.
func (r *Runner) PlaylistSave(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a draft ID is required", shared.ErrMissingArgument)
	}

	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	r.manager.Bootstrap(ctx, "")
	if !r.manager.LoggedIn() {
		return fmt.Errorf("%w: run 'jammming auth login' first", shared.ErrSessionExpired)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("→ %s\n", update.Message)
		}
		close(done)
	}()

	start := time.Now()
	result, err := r.engine.Save(ctx, id, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	r.writePlainln("✓ %s playlist '%s'", verb, result.Playlist.Name)
	r.writePlain("Tracks: %d\n", result.TrackCount)
	r.writePlain("Took: %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
