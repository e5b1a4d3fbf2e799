// Package browser hands article links (cover images) to the system opener.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Runner starts an external command without waiting for it.
type Runner func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func Open(rawURL string) error {
	return OpenWith(startCommand, rawURL)
}

// OpenWith validates rawURL and launches the platform opener through run.
func OpenWith(run Runner, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	name, args := opener(runtime.GOOS)
	return run(name, append(args, rawURL)...)
}

func opener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		// rundll32 avoids cmd /c start shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
