package tui

import (
	"errors"
	"time"

	"kcal-cli/internal/form"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type rowInputs struct {
	food  textinput.Model
	grams textinput.Model
}

type appModel struct {
	ctrl   *form.Controller
	inputs []rowInputs

	focusRow   int
	focusField form.Field

	// invalid holds the last validation failure; rows are highlighted from
	// it and it is recomputed on every edit until it clears.
	invalid *form.ValidationError

	calc      Calculator
	statusTTL time.Duration
	log       *zap.Logger

	width    int
	height   int
	keys     keyMap
	help     help.Model
	showHelp bool
}

func newAppModel(calc Calculator, statusTTL time.Duration, log *zap.Logger) appModel {
	if statusTTL <= 0 {
		statusTTL = form.StatusTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return appModel{
		ctrl:       form.NewController(),
		focusField: form.FieldFood,
		calc:       calc,
		statusTTL:  statusTTL,
		log:        log,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
}

func (m appModel) Init() tea.Cmd { return nil }

func newRowInputs() rowInputs {
	food := textinput.New()
	food.Prompt = ""
	food.Placeholder = "food"
	food.CharLimit = 120

	grams := textinput.New()
	grams.Prompt = ""
	grams.Placeholder = "grams"
	grams.CharLimit = 7
	return rowInputs{food: food, grams: grams}
}

const (
	labelW = 4
	gramsW = 10
)

// foodWidth is the rendered width of the food column.
func (m appModel) foodWidth() int {
	w := m.width
	if w <= 0 {
		w = 80
	}
	fw := w - labelW - gramsW - 4
	if fw > 48 {
		fw = 48
	}
	if fw < 12 {
		fw = 12
	}
	return fw
}

// addRow appends a row and focuses its food field.
func (m *appModel) addRow() tea.Cmd {
	i := m.ctrl.AddRow()
	in := newRowInputs()
	m.inputs = append(m.inputs, in)
	m.revalidate()
	m.log.Debug("row added", zap.Int("rows", m.ctrl.Len()))
	return m.focus(i, form.FieldFood)
}

// deleteRow removes the focused row.
func (m *appModel) deleteRow() tea.Cmd {
	i := m.focusRow
	if !m.ctrl.DeleteRow(i) {
		return nil
	}
	m.inputs = append(m.inputs[:i], m.inputs[i+1:]...)
	m.revalidate()
	m.log.Debug("row deleted", zap.Int("row", i), zap.Int("rows", m.ctrl.Len()))
	if i >= len(m.inputs) {
		i = len(m.inputs) - 1
	}
	return m.focus(i, m.focusField)
}

// focus moves the cursor to row i, field f. A negative i blurs everything.
func (m *appModel) focus(i int, f form.Field) tea.Cmd {
	for r := range m.inputs {
		m.inputs[r].food.Blur()
		m.inputs[r].grams.Blur()
	}
	if i < 0 || i >= len(m.inputs) {
		m.focusRow = 0
		return nil
	}
	m.focusRow = i
	m.focusField = f
	if f == form.FieldGrams {
		return m.inputs[i].grams.Focus()
	}
	return m.inputs[i].food.Focus()
}

// moveField walks food/grams across rows; delta is +1 or -1.
func (m *appModel) moveField(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	pos := m.focusRow * 2
	if m.focusField == form.FieldGrams {
		pos++
	}
	n := len(m.inputs) * 2
	pos = ((pos+delta)%n + n) % n
	f := form.FieldFood
	if pos%2 == 1 {
		f = form.FieldGrams
	}
	return m.focus(pos/2, f)
}

func (m *appModel) moveRow(delta int) tea.Cmd {
	i := m.focusRow + delta
	if i < 0 || i >= len(m.inputs) {
		return nil
	}
	return m.focus(i, m.focusField)
}

func (m *appModel) revalidate() {
	if m.invalid != nil {
		m.invalid = m.ctrl.Validate()
	}
}

// save starts a submission. Invalid rows block it and are reported in the
// status area instead.
func (m *appModel) save() tea.Cmd {
	t, err := m.ctrl.BeginSubmit()
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			m.invalid = verr
			seq := m.ctrl.ShowValidation(verr)
			return expireAfter(m.statusTTL, seq)
		}
		// Already in flight: the trigger is disabled.
		return nil
	}
	m.invalid = nil
	m.syncKeys()
	m.log.Info("calculation submitted", zap.Int("gen", t.Gen), zap.String("query", t.Query.Encode()))
	return submitCmd(m.calc, t)
}

func (m *appModel) finish(msg submitDoneMsg) tea.Cmd {
	seq, applied := m.ctrl.FinishSubmit(msg.gen, msg.lines, msg.err)
	m.syncKeys()
	if !applied {
		m.log.Debug("stale calculation result dropped", zap.Int("gen", msg.gen))
		return nil
	}
	if msg.err != nil {
		m.log.Warn("calculation failed", zap.Int("gen", msg.gen), zap.Error(msg.err))
	} else {
		m.log.Info("calculation done", zap.Int("gen", msg.gen), zap.Int("lines", len(msg.lines)))
	}
	return expireAfter(m.statusTTL, seq)
}

func (m *appModel) syncKeys() {
	m.keys.Save.SetEnabled(!m.ctrl.InFlight())
}
