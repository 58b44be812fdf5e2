// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/services"
)

// MockService is a test double for [services.Service]. Each method delegates
// to the corresponding func field when set, and returns zero values otherwise.
type MockService struct {
	SearchTracksFunc          func(ctx context.Context, query string, limit int) ([]models.Track, error)
	UserProfileFunc           func(ctx context.Context) (*services.User, error)
	GetPlaylistFunc           func(ctx context.Context, playlistID string) (*models.Playlist, error)
	CreatePlaylistFunc        func(ctx context.Context, userID, name string) (*models.Playlist, error)
	ReplacePlaylistTracksFunc func(ctx context.Context, playlistID string, uris []string) error
	RenamePlaylistFunc        func(ctx context.Context, playlistID, name string) error
}

func (m *MockService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if m.SearchTracksFunc != nil {
		return m.SearchTracksFunc(ctx, query, limit)
	}
	return []models.Track{}, nil
}

func (m *MockService) UserProfile(ctx context.Context) (*services.User, error) {
	if m.UserProfileFunc != nil {
		return m.UserProfileFunc(ctx)
	}
	return &services.User{ID: "mock_user"}, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name string) (*models.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, userID, name)
	}
	return &models.Playlist{ID: "mock_playlist", Name: name}, nil
}

func (m *MockService) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.ReplacePlaylistTracksFunc != nil {
		return m.ReplacePlaylistTracksFunc(ctx, playlistID, uris)
	}
	return nil
}

func (m *MockService) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	if m.RenamePlaylistFunc != nil {
		return m.RenamePlaylistFunc(ctx, playlistID, name)
	}
	return nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
