// Package ui provides terminal styling and output helpers for the mentor CLI.
package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInteractive reports whether r and w are both terminals. Forms and
// prompts only run when it is true.
func IsInteractive(r io.Reader, w io.Writer) bool {
	rf, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(rf.Fd())) {
		return false
	}
	wf, ok := w.(*os.File)
	return ok && term.IsTerminal(int(wf.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects standard conventions:
//   - NO_COLOR: https://no-color.org/ - disables color if set
//   - CLICOLOR=0: disables color
//   - CLICOLOR_FORCE: forces color even in non-TTY
//   - Falls back to TTY detection
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji determines if emoji decorations should be used.
// MENTOR_NO_EMOJI turns them off; otherwise only a TTY gets them.
func ShouldUseEmoji() bool {
	if os.Getenv("MENTOR_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// GetWidth returns the width of the terminal or a default value.
func GetWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
