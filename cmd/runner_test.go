package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/pixelpusher829/jammming/internal/auth"
	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
	tu "github.com/pixelpusher829/jammming/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := &tu.MockService{}
			store := auth.NewMemoryStore()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
				Store:      store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("init", func(t *testing.T) {
		t.Run("builds manager and catalog from config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Backend = "memory"

			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})
			if err := runner.init(""); err != nil {
				t.Fatalf("init failed: %v", err)
			}

			if runner.store == nil {
				t.Error("expected a store to be built")
			}
			if runner.manager == nil {
				t.Error("expected a session manager to be built")
			}
			if runner.catalog == nil {
				t.Error("expected a catalog service to be built")
			}
		})

		t.Run("memory backend has no draft storage", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Backend = "memory"

			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})
			if err := runner.init(""); err != nil {
				t.Fatalf("init failed: %v", err)
			}

			if err := runner.requireDrafts(); err == nil {
				t.Error("expected requireDrafts to fail without sqlite")
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Backend = "memory"

			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})
			if err := runner.init(""); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			manager := runner.manager
			if err := runner.init(""); err != nil {
				t.Fatalf("second init failed: %v", err)
			}
			if runner.manager != manager {
				t.Error("expected init to reuse the built manager")
			}
		})
	})

	t.Run("writers", func(t *testing.T) {
		t.Run("writeJSON writes data with trailing newline", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output: %q", got)
			}
		})

		t.Run("writeJSON surfaces write failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON("data", false); err == nil {
				t.Error("expected error from failing writer")
			}
		})

		t.Run("writePlain formats arguments", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("found %d tracks\n", 3); err != nil {
				t.Fatalf("writePlain failed: %v", err)
			}
			if got := output.String(); got != "found 3 tracks\n" {
				t.Errorf("unexpected output: %q", got)
			}
		})
	})

	t.Run("callbackAddr", func(t *testing.T) {
		tests := []struct {
			uri  string
			want string
		}{
			{"http://127.0.0.1:9090/callback", "127.0.0.1:9090"},
			{"http://localhost:3000/callback", "localhost:3000"},
		}
		for _, tc := range tests {
			got, err := callbackAddr(tc.uri)
			if err != nil {
				t.Fatalf("callbackAddr(%q) failed: %v", tc.uri, err)
			}
			if got != tc.want {
				t.Errorf("callbackAddr(%q) = %q, want %q", tc.uri, got, tc.want)
			}
		}
	})
}

func TestSearchOutput(t *testing.T) {
	config := shared.DefaultConfig()
	config.Storage.Backend = "memory"

	output := &bytes.Buffer{}
	catalog := &tu.MockService{
		SearchTracksFunc: func(ctx context.Context, query string, limit int) ([]models.Track, error) {
			return []models.Track{
				{ID: "t1", URI: "spotify:track:t1", Title: "Song One", Artist: "Artist A", Album: "Album X"},
			}, nil
		},
	}

	runner := NewRunner(RunnerOpts{Config: config, Output: output, Catalog: catalog})
	if err := runner.init(""); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cmd := searchCommand(runner)
	if err := cmd.Run(context.Background(), []string{"search", "song one"}); err != nil {
		t.Fatalf("search command failed: %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "Artist A - Song One") {
		t.Errorf("expected track listing in output, got %q", got)
	}
	if !strings.Contains(got, "ID: t1") {
		t.Errorf("expected track ID in output, got %q", got)
	}
}
