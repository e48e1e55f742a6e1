package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorMarkedFg   lipgloss.TerminalColor = ac("130", "214")
	colorErrorFg    lipgloss.TerminalColor = ac("160", "203")

	colorStatus = map[string]lipgloss.TerminalColor{
		"draft":     ac("240", "245"),
		"review":    ac("130", "214"),
		"published": ac("28", "42"),
	}
)

type styles struct {
	header   lipgloss.Style
	crumb    lipgloss.Style
	selected lipgloss.Style
	marked   lipgloss.Style
	muted    lipgloss.Style
	flash    lipgloss.Style
	flashErr lipgloss.Style
	prompt   lipgloss.Style
	pane     lipgloss.Style
}

func newStyles() styles {
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		muted = muted.Faint(true)
	}
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		crumb:    lipgloss.NewStyle().Foreground(colorMuted),
		selected: lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true),
		marked:   lipgloss.NewStyle().Foreground(colorMarkedFg).Bold(true),
		muted:    muted,
		flash:    lipgloss.NewStyle().Foreground(colorAccent),
		flashErr: lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true),
		prompt:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		pane:     lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(colorMuted).PaddingLeft(1),
	}
}

func statusBadge(status string) string {
	if status == "" {
		return ""
	}
	c, ok := colorStatus[status]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Render("[" + status + "]")
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts COLORTERM/TERM over
// termenv's detection when they claim more colors.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference pins lipgloss's background guess. Order: KB_TUI_THEME, then the
// COLORFGBG heuristic ("fg;bg", bg >= 7 is light).
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KB_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
