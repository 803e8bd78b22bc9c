package cli

import (
	"kcal-cli/internal/calories"
	"kcal-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startTUI runs the interactive form; tests replace it.
var startTUI = tui.Run

func newFormCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Edit a food list and calculate its calories (interactive)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, app)
		},
	}
}

// runForm starts the food list form. Both `kcal` and `kcal form` end up here.
func runForm(cmd *cobra.Command, app *App) error {
	timeout, err := app.cfg.RequestTimeout()
	if err != nil {
		return writeErr(cmd, err)
	}
	ttl, err := app.cfg.StatusDuration()
	if err != nil {
		return writeErr(cmd, err)
	}
	// The TUI owns the terminal; logs only go to --log-file.
	log, done, err := app.logger(true)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer done()

	client := calories.New(app.Endpoint, timeout)
	client.Logger = log
	log.Info("form started", zap.String("endpoint", client.Endpoint))
	return startTUI(tui.Options{Calculator: client, StatusTTL: ttl, Logger: log})
}
