package cli

import (
	"fmt"
	"strconv"

	"kcal-cli/internal/model"
	"kcal-cli/internal/nutrition"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type productList []model.Product

func (l productList) TextLines() []string {
	out := make([]string, 0, len(l))
	for _, p := range l {
		out = append(out, fmt.Sprintf("%d\t%s\t%d kcal/100g", p.ID, p.Name, p.CaloriesPer100g))
	}
	return out
}

type productText model.Product

func (p productText) TextLines() []string {
	return []string{fmt.Sprintf("%d\t%s\t%d kcal/100g", p.ID, p.Name, p.CaloriesPer100g)}
}

func newProductsCmd(app *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the local product database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", envOr("KCAL_DB", ""), "SQLite database path (default ~/.kcal/kcal.sqlite)")

	// withService opens the store for one command.
	withService := func(cmd *cobra.Command, fn func(svc *nutrition.Service) error) error {
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
		if err := fn(svc); err != nil {
			log.Debug("products command failed", zap.String("cmd", cmd.Name()), zap.Error(err))
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *nutrition.Service) error {
				ps, err := svc.Products(cmd.Context())
				if err != nil {
					return err
				}
				return writeOut(cmd, app, envelope{Data: productList(ps)})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withService(cmd, func(svc *nutrition.Service) error {
				p, err := svc.Product(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, envelope{Data: productText(p)})
			})
		},
	})

	var name string
	var cal int
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(svc *nutrition.Service) error {
				p, err := svc.CreateProduct(cmd.Context(), name, cal)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, envelope{Data: productText(p)})
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Product name")
	create.Flags().IntVar(&cal, "calories", 0, "Calories per 100 g")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	var upName string
	var upCal int
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a product or change its calories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withService(cmd, func(svc *nutrition.Service) error {
				cur, err := svc.Product(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("name") {
					upName = cur.Name
				}
				if !cmd.Flags().Changed("calories") {
					upCal = cur.CaloriesPer100g
				}
				p, err := svc.UpdateProduct(cmd.Context(), id, upName, upCal)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, envelope{Data: productText(p)})
			})
		},
	}
	update.Flags().StringVar(&upName, "name", "", "New name")
	update.Flags().IntVar(&upCal, "calories", 0, "New calories per 100 g")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withService(cmd, func(svc *nutrition.Service) error {
				if err := svc.DeleteProduct(cmd.Context(), id); err != nil {
					return err
				}
				return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "deleted": true}})
			})
		},
	})

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}
