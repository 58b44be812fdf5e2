// package tasks implements the playlist publishing flow.
//
// The core abstraction is SaveEngine, which takes a locally stored draft and
// materializes it as a Spotify playlist: creating the playlist when the draft
// has never been published, or replacing its tracks (and renaming it, if the
// draft name changed) when it has. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/repositories"
	"github.com/pixelpusher829/jammming/internal/services"
)

// SaveResult contains all data from a publish operation.
type SaveResult struct {
	Playlist   *models.Playlist // Playlist the draft now maps to
	Created    bool             // True when a new playlist was created
	TrackCount int              // Number of track URIs written
}

// DraftSource loads and persists drafts. Implemented by repositories.DraftRepository.
type DraftSource interface {
	Get(id string) (*models.Draft, error)
	Update(draft *models.Draft) error
}

// SaveEngine publishes drafts to the user's Spotify library.
type SaveEngine struct {
	catalog services.Service
	drafts  DraftSource
}

var _ DraftSource = (*repositories.DraftRepository)(nil)

// NewSaveEngine creates a SaveEngine with the provided service and draft store.
func NewSaveEngine(catalog services.Service, drafts DraftSource) *SaveEngine {
	return &SaveEngine{catalog: catalog, drafts: drafts}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SaveEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Save publishes the draft identified by draftID.
//
// When the draft carries a Spotify playlist ID that still resolves, the
// existing playlist's tracks are replaced and it is renamed to the draft's
// current name. Otherwise a fresh private playlist is created under the
// current user and the draft is updated with its ID.
func (e *SaveEngine) Save(ctx context.Context, draftID string, progress chan<- ProgressUpdate) (*SaveResult, error) {
	e.sendProgress(progress, ProgressUpdate{Phase: LoadDraft, Step: 1, Total: 1, Message: "Loading draft"})

	draft, err := e.drafts.Get(draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if len(draft.Tracks) == 0 {
		return nil, fmt.Errorf("draft %q has no tracks", draft.Name)
	}

	uris := draft.URIs()

	e.sendProgress(progress, ProgressUpdate{Phase: ResolvePlaylist, Step: 1, Total: 1, Message: "Checking for existing playlist"})

	var existing *models.Playlist
	if draft.SpotifyID != "" {
		existing, err = e.catalog.GetPlaylist(ctx, draft.SpotifyID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve playlist %s: %w", draft.SpotifyID, err)
		}
	}

	result := &SaveResult{TrackCount: len(uris)}
	if existing == nil {
		profile, err := e.catalog.UserProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user profile: %w", err)
		}

		e.sendProgress(progress, ProgressUpdate{
			Phase:   CreatePlaylist,
			Step:    1,
			Total:   1,
			Message: fmt.Sprintf("Creating playlist %q", draft.Name),
		})

		playlist, err := e.catalog.CreatePlaylist(ctx, profile.ID, draft.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create playlist: %w", err)
		}

		e.sendProgress(progress, ProgressUpdate{
			Phase:   WriteTracks,
			Step:    1,
			Total:   len(uris),
			Message: fmt.Sprintf("Adding %d tracks", len(uris)),
		})

		if err := e.catalog.ReplacePlaylistTracks(ctx, playlist.ID, uris); err != nil {
			return nil, fmt.Errorf("failed to add tracks: %w", err)
		}

		draft.SpotifyID = playlist.ID
		result.Playlist = playlist
		result.Created = true
	} else {
		e.sendProgress(progress, ProgressUpdate{
			Phase:   WriteTracks,
			Step:    1,
			Total:   len(uris),
			Message: fmt.Sprintf("Replacing %d tracks", len(uris)),
		})

		if err := e.catalog.ReplacePlaylistTracks(ctx, existing.ID, uris); err != nil {
			return nil, fmt.Errorf("failed to replace tracks: %w", err)
		}

		if existing.Name != draft.Name {
			e.sendProgress(progress, ProgressUpdate{
				Phase:   Rename,
				Step:    1,
				Total:   1,
				Message: fmt.Sprintf("Renaming playlist to %q", draft.Name),
			})

			if err := e.catalog.RenamePlaylist(ctx, existing.ID, draft.Name); err != nil {
				return nil, fmt.Errorf("failed to rename playlist: %w", err)
			}
			existing.Name = draft.Name
		}
		result.Playlist = existing
	}

	e.sendProgress(progress, ProgressUpdate{Phase: Persist, Step: 1, Total: 1, Message: "Saving draft metadata"})
	if err := e.drafts.Update(draft); err != nil {
		return nil, fmt.Errorf("failed to persist draft: %w", err)
	}

	return result, nil
}
