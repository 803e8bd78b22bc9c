package tui

import (
	"context"
	"time"

	"kcal-cli/internal/form"

	tea "github.com/charmbracelet/bubbletea"
)

// Calculator performs one calorie calculation request.
type Calculator interface {
	Calculate(ctx context.Context, q form.Query) ([]string, error)
}

// submitDoneMsg carries the outcome of the request started for gen.
type submitDoneMsg struct {
	gen   int
	lines []string
	err   error
}

// statusExpireMsg hides the status area if seq is still current.
type statusExpireMsg struct{ seq int }

func submitCmd(c Calculator, t form.Ticket) tea.Cmd {
	return func() tea.Msg {
		lines, err := c.Calculate(context.Background(), t.Query)
		return submitDoneMsg{gen: t.Gen, lines: lines, err: err}
	}
}

func expireAfter(ttl time.Duration, seq int) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusExpireMsg{seq: seq} })
}
