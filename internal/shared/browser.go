package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Overridable in tests to hit each platform branch.
var goos = func() string { return runtime.GOOS }

// OpenBrowser launches the system default browser pointed at url.
// Handles darwin, linux, and windows; anything else is an error.
func OpenBrowser(url string) error {
	var name string
	var args []string
	switch platform := goos(); platform {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start"}
	default:
		return fmt.Errorf("no browser launcher for %s", platform)
	}
	if err := exec.Command(name, append(args, url)...).Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	return nil
}
