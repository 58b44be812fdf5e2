package repositories

import (
	"database/sql"
	"fmt"

	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
)

// DraftRepository persists playlist drafts and their ordered tracks.
type DraftRepository struct {
	db *sql.DB
}

func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Create inserts a new draft with its tracks.
func (r *DraftRepository) Create(draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO drafts (id, name, spotify_id) VALUES (?, ?, ?)",
		draft.DraftID, draft.Name, draft.SpotifyID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	if err := insertTracks(tx, draft); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a draft with its tracks in position order.
func (r *DraftRepository) Get(id string) (*models.Draft, error) {
	row := r.db.QueryRow(
		"SELECT id, name, spotify_id, created_at, updated_at FROM drafts WHERE id = ?", id,
	)

	var draft models.Draft
	var created, updated string
	err := row.Scan(&draft.DraftID, &draft.Name, &draft.SpotifyID, &created, &updated)
	if ok, err := exists(err); !ok {
		if err != nil {
			return nil, fmt.Errorf("failed to get draft: %w", err)
		}
		return nil, shared.ErrDraftNotFound
	}
	draft.Created = scanTime(created)
	draft.Updated = scanTime(updated)

	rows, err := r.db.Query(
		"SELECT track_id, uri, title, artist, album FROM draft_tracks WHERE draft_id = ? ORDER BY position", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.URI, &t.Title, &t.Artist, &t.Album); err != nil {
			return nil, fmt.Errorf("failed to scan draft track: %w", err)
		}
		draft.Tracks = append(draft.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read draft tracks: %w", err)
	}

	return &draft, nil
}

// Update rewrites a draft's metadata and replaces its track list.
func (r *DraftRepository) Update(draft *models.Draft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE drafts SET name = ?, spotify_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		draft.Name, draft.SpotifyID, draft.DraftID,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return shared.ErrDraftNotFound
	}

	if _, err := tx.Exec("DELETE FROM draft_tracks WHERE draft_id = ?", draft.DraftID); err != nil {
		return fmt.Errorf("failed to clear draft tracks: %w", err)
	}
	if err := insertTracks(tx, draft); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a draft and, via cascade, its tracks.
func (r *DraftRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return shared.ErrDraftNotFound
	}
	// The cascade only fires with foreign keys enabled; clean up explicitly.
	if _, err := r.db.Exec("DELETE FROM draft_tracks WHERE draft_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete draft tracks: %w", err)
	}
	return nil
}

// List retrieves all drafts without their tracks, newest first.
func (r *DraftRepository) List() ([]*models.Draft, error) {
	rows, err := r.db.Query(
		"SELECT id, name, spotify_id, created_at, updated_at FROM drafts ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		var draft models.Draft
		var created, updated string
		if err := rows.Scan(&draft.DraftID, &draft.Name, &draft.SpotifyID, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		draft.Created = scanTime(created)
		draft.Updated = scanTime(updated)
		drafts = append(drafts, &draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}

	return drafts, nil
}

func insertTracks(tx *sql.Tx, draft *models.Draft) error {
	for i, t := range draft.Tracks {
		_, err := tx.Exec(
			"INSERT INTO draft_tracks (draft_id, position, track_id, uri, title, artist, album) VALUES (?, ?, ?, ?, ?, ?, ?)",
			draft.DraftID, i, t.ID, t.URI, t.Title, t.Artist, t.Album,
		)
		if err != nil {
			return fmt.Errorf("failed to insert draft track %s: %w", t.ID, err)
		}
	}
	return nil
}
