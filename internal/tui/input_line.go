package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine pads a text input view to exactly w columns on the input
// background. The result is always one visual line.
func renderInputLine(w int, inputView string, focused bool) string {
	if w < 6 {
		w = 6
	}
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)

	bg := colorInputBg
	if focused {
		bg = colorFocusBg
	}
	line := lipgloss.PlaceHorizontal(
		w,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(bg),
	)
	if xansi.StringWidth(line) > w {
		line = xansi.Cut(line, 0, w) + "\x1b[0m"
	}
	return line
}

// plainText strips escape sequences and control characters so server text
// is shown verbatim and can never style or move the terminal.
func plainText(s string) string {
	s = xansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
