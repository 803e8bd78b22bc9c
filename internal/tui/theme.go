package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. Colors adapt to light and dark backgrounds; faint is only
// applied on dark backgrounds where it stays legible.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorInputBg   = ac("254", "234")
	colorFocusBg   = ac("#e9e9e9", "#262626")
	colorAccent    = ac("27", "62")
	colorSuccess   = ac("28", "114")
	colorError     = ac("160", "203")
	colorControlBg = ac("252", "235")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleLabel(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
	if focused {
		return st.Bold(true).Foreground(colorAccent)
	}
	return st.Foreground(colorMuted)
}

func styleInvalid() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError).Bold(true)
}

func styleStatus(isError bool) lipgloss.Style {
	c := colorSuccess
	if isError {
		c = colorError
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(0, 1)
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts the
// terminal, upgrading to 256 colors or truecolor when TERM/COLORTERM say so.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case profile == termenv.Ascii:
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		profile = termenv.TrueColor
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference overrides background detection.
//
// Priority:
// 1) KCAL_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch themeName() {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
}

// themeName returns "light", "dark" or "" when undecided.
func themeName() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KCAL_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg < 7 {
				return "dark"
			}
			return "light"
		}
	}
	return ""
}
