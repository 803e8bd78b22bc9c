package cli

import (
	"errors"
	"fmt"

	"kcal-cli/internal/calories"
	"kcal-cli/internal/form"

	"github.com/spf13/cobra"
)

type calcResult struct {
	URL   string   `json:"url"`
	Lines []string `json:"lines"`
}

func (r calcResult) TextLines() []string { return r.Lines }

func newCalcCmd(app *App) *cobra.Command {
	var foods []string
	var grams []string

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Submit one food list and print the result",
		Example: `  kcal calc --food Apple --gram 150 --food Rice --gram 200
  kcal --format text calc --food Egg --gram 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(foods) != len(grams) {
				return writeErr(cmd, fmt.Errorf("calc: got %d --food and %d --gram flags", len(foods), len(grams)))
			}
			ctrl := form.NewController()
			for i := range foods {
				r := ctrl.AddRow()
				ctrl.SetFood(r, foods[i])
				ctrl.SetGrams(r, grams[i])
			}
			ticket, err := ctrl.BeginSubmit()
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					for _, l := range verr.Lines() {
						fmt.Fprintln(cmd.ErrOrStderr(), l)
					}
				}
				return err
			}

			timeout, err := app.cfg.RequestTimeout()
			if err != nil {
				return writeErr(cmd, err)
			}
			log, done, err := app.logger(true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			client := calories.New(app.Endpoint, timeout)
			client.Logger = log
			lines, err := client.Calculate(cmd.Context(), ticket.Query)
			ctrl.FinishSubmit(ticket.Gen, lines, err)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: calcResult{URL: client.URL(ticket.Query), Lines: ctrl.Status().Lines}})
		},
	}

	cmd.Flags().StringArrayVar(&foods, "food", nil, "Food name (repeat once per row)")
	cmd.Flags().StringArrayVar(&grams, "gram", nil, "Grams for the matching --food (repeat once per row)")
	return cmd
}
