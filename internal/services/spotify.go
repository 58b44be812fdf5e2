// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/pixelpusher829/jammming/internal/client"
	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
)

// DefaultSearchLimit matches the web client's search page size.
const DefaultSearchLimit = 10

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	URI         string               `json:"uri"`
}

type searchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// Requester is the request surface SpotifyService consumes, satisfied by
// [client.Client].
type Requester interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// SpotifyService implements [Service] against the Spotify Web API.
// Authentication and retry live in the request client, not here.
type SpotifyService struct {
	api Requester
}

// NewSpotifyService creates a Spotify service over the given request client.
func NewSpotifyService(api Requester) *SpotifyService {
	return &SpotifyService{api: api}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SearchTracks searches the catalog. A limit <= 0 uses DefaultSearchLimit;
// Spotify caps at 50.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > 50 {
		limit = 50
	}

	path := fmt.Sprintf("search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var resp searchResponse
	if err := s.api.Get(ctx, path, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*User, error) {
	var user SpotifyUser
	if err := s.api.Get(ctx, "me", &user); err != nil {
		return nil, err
	}
	return &User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Product:     user.Product,
	}, nil
}

// GetPlaylist retrieves a playlist by ID. A 404 maps to (nil, nil) so the
// save flow can distinguish "create" from "update".
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var sp SpotifyPlaylist
	if err := s.api.Get(ctx, "playlists/"+playlistID, &sp); err != nil {
		var httpErr *shared.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == 404 {
			return nil, nil
		}
		return nil, err
	}
	return toPlaylist(sp), nil
}

// CreatePlaylist creates a new private playlist for the user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name string) (*models.Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": "Created with Jammming",
		"public":      false,
	}

	var sp SpotifyPlaylist
	if err := s.api.Post(ctx, fmt.Sprintf("users/%s/playlists", userID), body, &sp); err != nil {
		return nil, err
	}
	return toPlaylist(sp), nil
}

// ReplacePlaylistTracks replaces the playlist contents with uris, chunked
// to Spotify's 100-URI request cap. The first chunk replaces, the rest
// append.
func (s *SpotifyService) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	path := fmt.Sprintf("playlists/%s/tracks", playlistID)

	if len(uris) == 0 {
		return s.api.Put(ctx, path, map[string]any{"uris": []string{}}, nil)
	}

	for offset := 0; offset < len(uris); offset += 100 {
		end := offset + 100
		if end > len(uris) {
			end = len(uris)
		}
		chunk := map[string]any{"uris": uris[offset:end]}

		var err error
		if offset == 0 {
			err = s.api.Put(ctx, path, chunk, nil)
		} else {
			err = s.api.Post(ctx, path, chunk, nil)
		}
		if err != nil {
			return fmt.Errorf("failed to write tracks at offset %d: %w", offset, err)
		}
	}

	return nil
}

// RenamePlaylist updates the playlist name.
func (s *SpotifyService) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	return s.api.Put(ctx, "playlists/"+playlistID, map[string]any{"name": name}, nil)
}

func toTrack(t SpotifyTrack) models.Track {
	track := models.Track{
		ID:    t.ID,
		URI:   t.URI,
		Title: t.Name,
		Album: t.Album.Name,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

func toPlaylist(sp SpotifyPlaylist) *models.Playlist {
	return &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}
}

var _ Service = (*SpotifyService)(nil)
var _ Requester = (*client.Client)(nil)
