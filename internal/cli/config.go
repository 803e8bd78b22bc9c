package cli

import (
	"errors"
	"os"
	"strings"

	"kcal-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			cfg.Endpoint = app.Endpoint
			return writeOut(cmd, app, envelope{Data: cfg})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(app.ConfigPath)
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, errors.New("config: "+path+" already exists (use --force)"))
			}
			if err := config.Save(path, config.Default()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: map[string]any{"path": path}})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
