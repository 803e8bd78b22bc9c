package tui

import (
	"kcal-cli/internal/form"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case submitDoneMsg:
		return m, m.finish(msg)

	case statusExpireMsg:
		m.ctrl.ExpireStatus(msg.seq)
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.statusHit(msg.Y) {
			m.ctrl.Dismiss()
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if m.showHelp {
			m.showHelp = false
			m.help.ShowAll = false
			return m, nil
		}
		m.ctrl.Dismiss()
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m, m.addRow()
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteRow()
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case msg.Type == tea.KeyCtrlS:
		// Save is disabled while a request is in flight.
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.moveField(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.moveField(-1)
	case key.Matches(msg, m.keys.Up):
		return m, m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		return m, m.moveRow(1)
	}
	return m, m.updateFocusedInput(msg)
}

// updateFocusedInput forwards typing to the focused field and mirrors the
// value into the controller.
func (m *appModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	i := m.focusRow
	if i < 0 || i >= len(m.inputs) {
		return nil
	}
	var cmd tea.Cmd
	in := &m.inputs[i]
	if m.focusField == form.FieldGrams {
		msg, ok := digitsOnly(msg)
		if !ok {
			return nil
		}
		in.grams, cmd = in.grams.Update(msg)
		m.ctrl.SetGrams(i, in.grams.Value())
	} else {
		in.food, cmd = in.food.Update(msg)
		m.ctrl.SetFood(i, in.food.Value())
	}
	m.revalidate()
	return cmd
}

// digitsOnly strips non-digit runes from typed or pasted text. It reports
// false when nothing is left to insert.
func digitsOnly(msg tea.Msg) (tea.Msg, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok || k.Type != tea.KeyRunes {
		return msg, true
	}
	runes := make([]rune, 0, len(k.Runes))
	for _, r := range k.Runes {
		if r >= '0' && r <= '9' {
			runes = append(runes, r)
		}
	}
	if len(runes) == 0 {
		return msg, false
	}
	k.Runes = runes
	return k, true
}

// statusHit reports whether screen row y falls on the status area.
func (m appModel) statusHit(y int) bool {
	if !m.ctrl.Status().Visible {
		return false
	}
	top := lipgloss.Height(m.bodyView())
	h := lipgloss.Height(m.statusView())
	return y >= top && y < top+h
}
