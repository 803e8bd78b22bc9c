package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options configures the interactive form.
type Options struct {
	Calculator Calculator
	StatusTTL  time.Duration
	Logger     *zap.Logger
}

// Run starts the form and blocks until the user quits.
func Run(opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(opts.Calculator, opts.StatusTTL, opts.Logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
