package tui

import (
	"strings"

	"kcal-cli/internal/docs"
	"kcal-cli/internal/form"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	parts := []string{m.bodyView()}
	if st := m.statusView(); st != "" {
		parts = append(parts, st)
	}
	parts = append(parts, "", m.help.View(m.keys))
	if m.showHelp {
		if md, ok := docs.Get("form"); ok {
			parts = append(parts, "", renderMarkdown(md, m.contentWidth()))
		}
	}
	return strings.Join(parts, "\n")
}

func (m appModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

// bodyView renders everything above the status area.
func (m appModel) bodyView() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("Food list"))
	b.WriteString("\n\n")

	if m.ctrl.Empty() {
		b.WriteString(styleMuted().Render("  No products yet. Press ctrl+n to add one."))
		b.WriteString("\n")
	}
	fw := m.foodWidth()
	for i := range m.inputs {
		b.WriteString(m.rowView(i, fw))
		b.WriteString("\n")
	}
	if m.ctrl.InFlight() {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("  Calculating…"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (m appModel) rowView(i, fw int) string {
	focused := i == m.focusRow
	label := styleLabel(focused).Render(m.ctrl.Label(i))

	in := m.inputs[i]
	food := renderInputLine(fw, in.food.View(), focused && m.focusField == form.FieldFood)
	grams := renderInputLine(gramsW, in.grams.View(), focused && m.focusField == form.FieldGrams)

	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", food, " ", grams)
	if m.invalid.For(i, form.FieldFood) || m.invalid.For(i, form.FieldGrams) {
		line += " " + styleInvalid().Render("!")
	}
	return line
}

// statusView renders the status area, or "" when hidden. Lines are shown as
// plain text.
func (m appModel) statusView() string {
	st := m.ctrl.Status()
	if !st.Visible {
		return ""
	}
	lines := make([]string, 0, len(st.Lines))
	for _, l := range st.Lines {
		lines = append(lines, plainText(l))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	w := m.contentWidth() - 4
	if w < 10 {
		w = 10
	}
	return styleStatus(st.IsError()).Width(w).Render(strings.Join(lines, "\n"))
}
