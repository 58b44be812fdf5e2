package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pixelpusher829/jammming/internal/models"
)

// TrackCache stores catalog search results keyed by provider track ID.
//
// Duplicate inserts are silently ignored (UNIQUE constraint violations);
// the cache only ever grows a track once.
type TrackCache struct {
	db *sql.DB
}

func NewTrackCache(db *sql.DB) *TrackCache {
	return &TrackCache{db: db}
}

// Put caches a track. Returns nil if the track is already cached.
func (c *TrackCache) Put(track models.Track) error {
	_, err := c.db.Exec(
		"INSERT INTO track_cache (track_id, uri, title, artist, album) VALUES (?, ?, ?, ?, ?)",
		track.ID, track.URI, track.Title, track.Artist, track.Album,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}

// PutAll caches a batch of tracks, ignoring duplicates.
func (c *TrackCache) PutAll(tracks []models.Track) error {
	for _, t := range tracks {
		if err := c.Put(t); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a cached track by provider ID, or nil when absent.
func (c *TrackCache) Get(trackID string) (*models.Track, error) {
	row := c.db.QueryRow(
		"SELECT track_id, uri, title, artist, album FROM track_cache WHERE track_id = ?", trackID,
	)

	var t models.Track
	err := row.Scan(&t.ID, &t.URI, &t.Title, &t.Artist, &t.Album)
	if ok, err := exists(err); !ok {
		if err != nil {
			return nil, fmt.Errorf("failed to get cached track: %w", err)
		}
		return nil, nil
	}
	return &t, nil
}

// Count returns the number of cached tracks.
func (c *TrackCache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM track_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached tracks: %w", err)
	}
	return n, nil
}

// Clear empties the cache.
func (c *TrackCache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM track_cache"); err != nil {
		return fmt.Errorf("failed to clear track cache: %w", err)
	}
	return nil
}
