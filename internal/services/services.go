package services

import (
	"context"

	"github.com/pixelpusher829/jammming/internal/models"
)

// Service defines the provider operations the playlist builder consumes.
type Service interface {
	// SearchTracks searches the catalog by free-text query.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// UserProfile retrieves the authenticated user's profile.
	UserProfile(ctx context.Context) (*User, error)

	// GetPlaylist retrieves playlist metadata, or nil if it no longer exists.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// CreatePlaylist creates a private playlist for the given user.
	CreatePlaylist(ctx context.Context, userID, name string) (*models.Playlist, error)

	// ReplacePlaylistTracks replaces a playlist's contents with the given URIs.
	ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error

	// RenamePlaylist updates a playlist's name.
	RenamePlaylist(ctx context.Context, playlistID, name string) error

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}

// User represents the provider user profile fields the builder consumes.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"`
}
