package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptYesNo displays a yes/no question and returns the user's answer.
// It defaults to defaultYes if the user just presses Enter, on read errors,
// and in non-interactive mode.
func PromptYesNo(in io.Reader, out io.Writer, question string, defaultYes bool) bool {
	var prompt string
	if defaultYes {
		prompt = fmt.Sprintf("%s [Y/n] ", question)
	} else {
		prompt = fmt.Sprintf("%s [y/N] ", question)
	}

	// In non-interactive mode (e.g., CI/script), return default
	if !IsInteractive(in, out) {
		fmt.Fprintf(out, "%s(non-interactive, defaulting to %t)\n", prompt, defaultYes)
		return defaultYes
	}

	fmt.Fprint(out, prompt)
	return readYesNo(bufio.NewReader(in), defaultYes)
}

func readYesNo(r *bufio.Reader, defaultYes bool) bool {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return defaultYes
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return defaultYes
	}
}
