package cli

import (
	"fmt"
	"os"
	"strings"

	"kcal-cli/internal/config"
	"kcal-cli/internal/format"
	"kcal-cli/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigPath string
	Endpoint   string
	Format     string
	Pretty     bool
	LogLevel   string
	LogFile    string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kcal",
		Short:        "Food list calorie calculator (TUI + server)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Edit a food list interactively (same as "kcal form")
  kcal

  # One calculation from the command line
  kcal calc --food Apple --gram 150 --food Rice --gram 200

  # Run the calculation server
  kcal serve --addr 127.0.0.1:8080
`),
		// No subcommand => interactive form.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if strings.TrimSpace(app.Endpoint) == "" {
			app.Endpoint = cfg.Endpoint
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("KCAL_CONFIG", ""), "Config file (default ~/.kcal/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Endpoint, "endpoint", envOr("KCAL_ENDPOINT", ""), "Calculation endpoint URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KCAL_FORMAT", "json"), "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("KCAL_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("KCAL_LOG_FILE", ""), "Write logs to this file")

	cmd.AddCommand(newFormCmd(app))
	cmd.AddCommand(newCalcCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newProductsCmd(app))
	cmd.AddCommand(newMealsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// logger builds the process logger. quiet discards logs unless --log-file
// is set.
func (app *App) logger(quiet bool) (*zap.Logger, func(), error) {
	return logging.New(logging.Options{Level: app.LogLevel, File: app.LogFile, Quiet: quiet})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envelope wraps command output as {"data": ...}. Text output prints the
// data alone.
type envelope struct {
	Data any `json:"data"`
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	if e, ok := v.(envelope); ok && strings.EqualFold(strings.TrimSpace(app.Format), "text") {
		v = e.Data
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
