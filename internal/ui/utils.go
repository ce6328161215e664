package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Truncate shortens s to maxLen runes, adding an ellipsis if needed.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(r[:maxLen-1]) + "…"
}

// WrapText word-wraps text to width runes per line.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		if len([]rune(line)) <= width {
			result.WriteString(line)
			continue
		}

		current := ""
		for _, word := range strings.Fields(line) {
			switch {
			case current == "":
				current = word
			case len([]rune(current))+1+len([]rune(word)) <= width:
				current += " " + word
			default:
				result.WriteString(current + "\n")
				current = word
			}
		}
		result.WriteString(current)
	}
	return result.String()
}
