package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kcal-cli/internal/nutrition"
	"kcal-cli/internal/store"
	"kcal-cli/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calorie calculation server",
		Long: strings.TrimSpace(`
Run the HTTP backend the form submits to.

Products and meals live in a local SQLite database. Unknown foods are looked
up through server.lookup_url when it is configured.
`),
		Example: strings.TrimSpace(`
kcal serve --addr 127.0.0.1:8080
kcal serve --db /tmp/kcal.sqlite --log-level debug
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(addr) == "" {
				addr = app.cfg.Server.Addr
			}
			log, done, err := app.logger(false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, closeStore, err := openService(ctx, app, dbPath, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeStore()

			srv, err := web.NewServer(web.ServerConfig{Addr: addr, AllowOrigin: app.cfg.Server.AllowOrigin}, svc, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "kcal server running at http://%s/\n", ln.Addr().String())
			log.Info("server listening", zap.String("addr", ln.Addr().String()))

			return serveUntilDone(ctx, ln, srv.Handler(), log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("KCAL_ADDR", ""), "Bind address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&dbPath, "db", envOr("KCAL_DB", ""), "SQLite database path (default ~/.kcal/kcal.sqlite)")
	return cmd
}

// serveUntilDone serves on ln until ctx is cancelled, then shuts down
// gracefully.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler, log *zap.Logger) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openService opens the product database and wires the calorie service.
func openService(ctx context.Context, app *App, dbPath string, log *zap.Logger) (*nutrition.Service, func(), error) {
	if strings.TrimSpace(dbPath) == "" {
		p, err := app.cfg.DBPath()
		if err != nil {
			return nil, nil, err
		}
		dbPath = p
	}
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	opts := []nutrition.Option{nutrition.WithLogger(log)}
	if u := strings.TrimSpace(app.cfg.Server.LookupURL); u != "" {
		opts = append(opts, nutrition.WithLookup(nutrition.NewHTTPLookup(u)))
	}
	log.Debug("store opened", zap.String("path", dbPath))
	return nutrition.NewService(st, opts...), func() { _ = st.Close() }, nil
}
