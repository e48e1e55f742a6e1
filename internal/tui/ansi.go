package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// fitLine truncates s to width cells (keeping escape sequences intact) and pads the rest.
func fitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// visuallyEmpty reports whether s renders as blank once escapes are removed.
func visuallyEmpty(s string) bool {
	return strings.TrimSpace(ansi.Strip(s)) == ""
}
