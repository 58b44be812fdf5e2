package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pixelpusher829/jammming/internal/models"
	mocks "github.com/pixelpusher829/jammming/internal/testing"
)

type memDrafts struct {
	drafts  map[string]*models.Draft
	updates int
}

func newMemDrafts(drafts ...*models.Draft) *memDrafts {
	m := &memDrafts{drafts: map[string]*models.Draft{}}
	for _, d := range drafts {
		m.drafts[d.DraftID] = d
	}
	return m
}

func (m *memDrafts) Get(id string) (*models.Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft not found: %s", id)
	}
	return d, nil
}

func (m *memDrafts) Update(draft *models.Draft) error {
	m.updates++
	m.drafts[draft.DraftID] = draft
	return nil
}

func testDraft(spotifyID string) *models.Draft {
	return &models.Draft{
		DraftID:   "d1",
		Name:      "Road Trip",
		SpotifyID: spotifyID,
		Tracks: []models.Track{
			{ID: "t1", URI: "spotify:track:t1", Title: "One"},
			{ID: "t2", URI: "spotify:track:t2", Title: "Two"},
		},
	}
}

func TestSaveEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("creates playlist for unpublished draft", func(t *testing.T) {
		var gotURIs []string
		var createdFor string
		svc := &mocks.MockService{
			CreatePlaylistFunc: func(ctx context.Context, userID, name string) (*models.Playlist, error) {
				createdFor = userID
				return &models.Playlist{ID: "p99", Name: name}, nil
			},
			ReplacePlaylistTracksFunc: func(ctx context.Context, playlistID string, uris []string) error {
				if playlistID != "p99" {
					t.Errorf("expected tracks written to p99, got %s", playlistID)
				}
				gotURIs = uris
				return nil
			},
		}
		drafts := newMemDrafts(testDraft(""))

		engine := NewSaveEngine(svc, drafts)
		result, err := engine.Save(ctx, "d1", nil)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !result.Created {
			t.Error("expected Created to be true")
		}
		if result.Playlist.ID != "p99" {
			t.Errorf("expected playlist p99, got %s", result.Playlist.ID)
		}
		if createdFor != "mock_user" {
			t.Errorf("expected playlist created for mock_user, got %s", createdFor)
		}
		if len(gotURIs) != 2 || gotURIs[0] != "spotify:track:t1" {
			t.Errorf("unexpected URIs written: %v", gotURIs)
		}
		if drafts.drafts["d1"].SpotifyID != "p99" {
			t.Errorf("expected draft to remember playlist ID, got %q", drafts.drafts["d1"].SpotifyID)
		}
		if drafts.updates != 1 {
			t.Errorf("expected 1 draft update, got %d", drafts.updates)
		}
	})

	t.Run("replaces and renames existing playlist", func(t *testing.T) {
		var replaced, renamed bool
		svc := &mocks.MockService{
			GetPlaylistFunc: func(ctx context.Context, playlistID string) (*models.Playlist, error) {
				return &models.Playlist{ID: playlistID, Name: "Old Name"}, nil
			},
			CreatePlaylistFunc: func(ctx context.Context, userID, name string) (*models.Playlist, error) {
				t.Error("CreatePlaylist should not be called for an existing playlist")
				return nil, errors.New("unexpected")
			},
			ReplacePlaylistTracksFunc: func(ctx context.Context, playlistID string, uris []string) error {
				replaced = true
				return nil
			},
			RenamePlaylistFunc: func(ctx context.Context, playlistID, name string) error {
				renamed = true
				if name != "Road Trip" {
					t.Errorf("expected rename to Road Trip, got %q", name)
				}
				return nil
			},
		}
		drafts := newMemDrafts(testDraft("p42"))

		engine := NewSaveEngine(svc, drafts)
		result, err := engine.Save(ctx, "d1", nil)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if result.Created {
			t.Error("expected Created to be false")
		}
		if !replaced || !renamed {
			t.Errorf("expected replace and rename, got replaced=%v renamed=%v", replaced, renamed)
		}
		if result.Playlist.Name != "Road Trip" {
			t.Errorf("expected playlist renamed in result, got %q", result.Playlist.Name)
		}
	})

	t.Run("recreates playlist deleted on the provider", func(t *testing.T) {
		svc := &mocks.MockService{
			GetPlaylistFunc: func(ctx context.Context, playlistID string) (*models.Playlist, error) {
				return nil, nil
			},
		}
		drafts := newMemDrafts(testDraft("gone"))

		engine := NewSaveEngine(svc, drafts)
		result, err := engine.Save(ctx, "d1", nil)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !result.Created {
			t.Error("expected a fresh playlist when the old one is missing")
		}
		if drafts.drafts["d1"].SpotifyID != "mock_playlist" {
			t.Errorf("expected draft rebound to new playlist, got %q", drafts.drafts["d1"].SpotifyID)
		}
	})

	t.Run("rejects empty draft", func(t *testing.T) {
		drafts := newMemDrafts(&models.Draft{DraftID: "d1", Name: "Empty"})
		engine := NewSaveEngine(&mocks.MockService{}, drafts)
		if _, err := engine.Save(ctx, "d1", nil); err == nil {
			t.Fatal("expected error for draft with no tracks")
		}
	})

	t.Run("propagates track write failures", func(t *testing.T) {
		svc := &mocks.MockService{
			ReplacePlaylistTracksFunc: func(ctx context.Context, playlistID string, uris []string) error {
				return errors.New("boom")
			},
		}
		drafts := newMemDrafts(testDraft(""))
		engine := NewSaveEngine(svc, drafts)
		if _, err := engine.Save(ctx, "d1", nil); err == nil {
			t.Fatal("expected error when track write fails")
		}
		if drafts.updates != 0 {
			t.Error("draft should not be persisted after a failed write")
		}
	})

	t.Run("emits progress updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 16)
		engine := NewSaveEngine(&mocks.MockService{}, newMemDrafts(testDraft("")))
		if _, err := engine.Save(ctx, "d1", progress); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		close(progress)

		seen := map[Phase]bool{}
		for u := range progress {
			seen[u.Phase] = true
		}
		for _, phase := range []Phase{LoadDraft, ResolvePlaylist, CreatePlaylist, WriteTracks, Persist} {
			if !seen[phase] {
				t.Errorf("missing progress phase %s", phase)
			}
		}
	})
}
