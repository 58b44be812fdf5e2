package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestHelpers(t *testing.T) {
	t.Run("GenerateID is a unique UUID string", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if len(a) != 36 {
			t.Errorf("len = %d, want 36", len(a))
		}
		if a == b {
			t.Error("expected distinct IDs")
		}
	})

	t.Run("GenerateState is url-safe and random", func(t *testing.T) {
		a, err := GenerateState()
		if err != nil {
			t.Fatalf("GenerateState failed: %v", err)
		}
		if strings.ContainsAny(a, "+/=") {
			t.Errorf("state contains non-url-safe characters: %q", a)
		}
		b, _ := GenerateState()
		if a == b {
			t.Error("expected distinct state tokens")
		}
	})

	t.Run("MarshalJSON compact and pretty", func(t *testing.T) {
		data := map[string]string{"name": "Mix"}

		compact, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if string(compact) != `{"name":"Mix"}` {
			t.Errorf("compact = %s", compact)
		}

		pretty, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("MarshalJSON failed: %v", err)
		}
		if !strings.Contains(string(pretty), "\n  ") {
			t.Errorf("pretty output not indented: %s", pretty)
		}
	})
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("log output = %q", buf.String())
		}
	})

	t.Run("NewLogger tolerates a nil writer", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Error("expected a logger")
		}
	})

	t.Run("NewFileLogger creates directories and appends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("file entry")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "file entry") {
			t.Errorf("log file = %q", data)
		}
	})

	t.Run("WithLogger attaches fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("tagged")
		if !strings.Contains(buf.String(), "component") {
			t.Errorf("log output = %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters below the level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("quiet")
		if strings.Contains(buf.String(), "quiet") {
			t.Error("info entry should be filtered at error level")
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("HTTPError reports status and body", func(t *testing.T) {
		err := &HTTPError{Status: 429, Body: "slow down"}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("Error() = %q", err.Error())
		}

		var httpErr *HTTPError
		wrapped := errors.Join(errors.New("outer"), err)
		if !errors.As(wrapped, &httpErr) || httpErr.Status != 429 {
			t.Error("expected errors.As to find the HTTPError")
		}
	})

	t.Run("IsAuthStatus matches 401 and 403 only", func(t *testing.T) {
		for status, want := range map[int]bool{401: true, 403: true, 400: false, 429: false, 500: false} {
			if got := IsAuthStatus(status); got != want {
				t.Errorf("IsAuthStatus(%d) = %v, want %v", status, got, want)
			}
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	t.Run("rejects an unknown platform", func(t *testing.T) {
		orig := goos
		goos = func() string { return "plan9" }
		defer func() { goos = orig }()

		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected an error for an unhandled platform")
		}
	})
}
