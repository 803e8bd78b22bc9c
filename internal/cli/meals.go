package cli

import (
	"fmt"
	"time"

	"kcal-cli/internal/model"
	"kcal-cli/internal/nutrition"

	"github.com/spf13/cobra"
)

type mealText model.Meal

func (m mealText) TextLines() []string {
	out := []string{fmt.Sprintf("%d\t%s\t%s\t%d kcal", m.ID, m.Name, m.CreatedAt.Format(time.RFC3339), model.Meal(m).TotalCalories())}
	for _, mp := range m.Products {
		name := fmt.Sprintf("product %d", mp.ProductID)
		if mp.Product != nil {
			name = mp.Product.Name
		}
		out = append(out, fmt.Sprintf("  %dg %s (%d kcal)", mp.Grams, name, mp.Calories()))
	}
	return out
}

type mealList []model.Meal

func (l mealList) TextLines() []string {
	var out []string
	for _, m := range l {
		out = append(out, mealText(m).TextLines()[0])
	}
	return out
}

func newMealsCmd(app *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Inspect meals recorded by calculations",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", envOr("KCAL_DB", ""), "SQLite database path (default ~/.kcal/kcal.sqlite)")

	run := func(cmd *cobra.Command, fn func(*nutrition.Service) (any, error)) error {
		log, done, err := app.logger(true)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer done()
		svc, closeStore, err := openService(cmd.Context(), app, dbPath, log)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer closeStore()
		v, err := fn(svc)
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, envelope{Data: v})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List meals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *nutrition.Service) (any, error) {
				ms, err := svc.Meals(cmd.Context())
				return mealList(ms), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one meal with its products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return run(cmd, func(svc *nutrition.Service) (any, error) {
				m, err := svc.Meal(cmd.Context(), id)
				return mealText(m), err
			})
		},
	})

	return cmd
}
