package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleDraft(id string) *models.Draft {
	return &models.Draft{
		DraftID: id,
		Name:    "Road Trip",
		Tracks: []models.Track{
			{ID: "t1", URI: "spotify:track:t1", Title: "Song One", Artist: "Artist A", Album: "Album A"},
			{ID: "t2", URI: "spotify:track:t2", Title: "Song Two", Artist: "Artist B", Album: "Album B"},
		},
	}
}

func TestDraftRepository(t *testing.T) {
	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		draft := sampleDraft("d1")
		if err := repo.Create(draft); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.Get("d1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Road Trip" {
			t.Errorf("Name = %q", got.Name)
		}
		if len(got.Tracks) != 2 {
			t.Fatalf("len(Tracks) = %d, want 2", len(got.Tracks))
		}
		if got.Tracks[0].ID != "t1" || got.Tracks[1].ID != "t2" {
			t.Errorf("tracks out of order: %v", got.Tracks)
		}
		if got.Tracks[0].Title != "Song One" || got.Tracks[0].Artist != "Artist A" {
			t.Errorf("track fields lost: %+v", got.Tracks[0])
		}
		if got.Created.IsZero() || got.Updated.IsZero() {
			t.Error("expected timestamps to be populated")
		}
	})

	t.Run("Create rejects an invalid draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		err := repo.Create(&models.Draft{DraftID: "d1"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("Get missing draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("err = %v, want ErrDraftNotFound", err)
		}
	})

	t.Run("Update replaces the track list", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		draft := sampleDraft("d1")
		if err := repo.Create(draft); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		draft.Name = "Renamed"
		draft.SpotifyID = "sp42"
		draft.Tracks = []models.Track{
			{ID: "t3", URI: "spotify:track:t3", Title: "Song Three", Artist: "Artist C"},
		}
		if err := repo.Update(draft); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get("d1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Renamed" || got.SpotifyID != "sp42" {
			t.Errorf("metadata not updated: %+v", got)
		}
		if len(got.Tracks) != 1 || got.Tracks[0].ID != "t3" {
			t.Errorf("tracks not replaced: %v", got.Tracks)
		}
	})

	t.Run("Update missing draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		err := repo.Update(sampleDraft("ghost"))
		if !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("err = %v, want ErrDraftNotFound", err)
		}
	})

	t.Run("Delete removes the draft and its tracks", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewDraftRepository(db)

		if err := repo.Create(sampleDraft("d1")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := repo.Delete("d1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get("d1"); !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("err = %v, want ErrDraftNotFound", err)
		}

		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM draft_tracks WHERE draft_id = ?", "d1").Scan(&n); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if n != 0 {
			t.Errorf("orphaned tracks remain: %d", n)
		}
	})

	t.Run("Delete missing draft", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		if err := repo.Delete("nope"); !errors.Is(err, shared.ErrDraftNotFound) {
			t.Errorf("err = %v, want ErrDraftNotFound", err)
		}
	})

	t.Run("List returns drafts without tracks", func(t *testing.T) {
		repo := NewDraftRepository(setupTestDB(t))

		if err := repo.Create(sampleDraft("d1")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		second := sampleDraft("d2")
		second.Name = "Second"
		if err := repo.Create(second); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		drafts, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(drafts) != 2 {
			t.Fatalf("len(drafts) = %d, want 2", len(drafts))
		}
		for _, d := range drafts {
			if len(d.Tracks) != 0 {
				t.Errorf("List should not load tracks, got %d for %s", len(d.Tracks), d.DraftID)
			}
		}
	})
}
