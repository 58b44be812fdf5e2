package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error     // Create inserts a new model into the database
	Get(id string) (T, error) // Get retrieves a model by its ID
	Update(model T) error     // Update modifies an existing model in the database
	Delete(id string) error   // Delete removes a model from the database by its ID
	List() ([]T, error)       // List retrieves all models
}

// Track represents a song from the catalog.
type Track struct {
	ID     string `json:"id"`
	URI    string `json:"uri"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Playlist represents playlist metadata held on the provider.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Draft is a locally assembled playlist. SpotifyID is empty until the draft
// has been saved to the provider at least once.
type Draft struct {
	DraftID   string    `json:"id"`
	Name      string    `json:"name"`
	SpotifyID string    `json:"spotify_id"`
	Tracks    []Track   `json:"tracks"`
	Created   time.Time `json:"created_at"`
	Updated   time.Time `json:"updated_at"`
}

func (d *Draft) ID() string           { return d.DraftID }
func (d *Draft) CreatedAt() time.Time { return d.Created }
func (d *Draft) UpdatedAt() time.Time { return d.Updated }

func (d *Draft) Validate() error {
	if d.DraftID == "" {
		return fmt.Errorf("draft ID is required")
	}
	if d.Name == "" {
		return fmt.Errorf("draft name is required")
	}
	return nil
}

// URIs returns the provider URIs of the draft's tracks in order.
func (d *Draft) URIs() []string {
	uris := make([]string, len(d.Tracks))
	for i, t := range d.Tracks {
		uris[i] = t.URI
	}
	return uris
}

// Contains reports whether the draft already holds the given track.
func (d *Draft) Contains(trackID string) bool {
	for _, t := range d.Tracks {
		if t.ID == trackID {
			return true
		}
	}
	return false
}
