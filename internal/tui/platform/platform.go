// Package platform launches the configured external programs. Failures
// here surface as status messages, never as fatal errors.
package platform

import (
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// ValidateURL trims and checks a URL before handing it to an external
// program.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("item has no URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL host")
	}
	return trimmed, nil
}

// Installed reports whether a program is available on PATH.
func Installed(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}

// Open runs the given program with the URL as its argument and waits for
// it to finish.
func Open(program, url string) error {
	if !Installed(program) {
		return fmt.Errorf("%s is not installed", program)
	}
	if err := exec.Command(program, url).Run(); err != nil {
		return fmt.Errorf("run %s: %w", program, err)
	}
	return nil
}

// OpenDetached runs the program without waiting, for media players that
// stay open.
func OpenDetached(program, url string) error {
	if !Installed(program) {
		return fmt.Errorf("%s is not installed", program)
	}
	cmd := exec.Command(program, url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("run %s: %w", program, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// EditInTerminal opens a file in the configured editor inside a separate
// terminal emulator, so the reader's own screen stays intact.
func EditInTerminal(terminal, termFlags, editor, path string) error {
	if !Installed(terminal) {
		return fmt.Errorf("%s is not installed", terminal)
	}
	args := strings.Fields(termFlags)
	args = append(args, "-e", editor, path)
	if err := exec.Command(terminal, args...).Run(); err != nil {
		return fmt.Errorf("run %s: %w", terminal, err)
	}
	return nil
}

// CopyText puts text on the system clipboard.
func CopyText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
