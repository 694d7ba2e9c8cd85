package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alanyang/twig/internal/config"
	"github.com/alanyang/twig/internal/version"
	"github.com/alanyang/twig/internal/wire"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prompts over MCP",
		Long: `Serve the prompt library.

With --transport stdio (the default) one MCP client is served over
stdin/stdout. With --transport http the MCP streamable HTTP endpoint is
mounted at /mcp next to the REST API under /api and a WebSocket feed of
reload events at /api/ws.

--watch reloads the library whenever files under the data directory change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts.cfg)
		},
	}

	f := cmd.Flags()
	f.String("transport", config.TransportStdio, "transport: stdio or http")
	f.String("addr", ":8080", "listen address for the http transport")
	f.Bool("watch", false, "reload prompts when files change")
	f.Duration("watch-debounce", 250*time.Millisecond, "quiet period before a watch-triggered reload")
	_ = opts.v.BindPFlag("transport", f.Lookup("transport"))
	_ = opts.v.BindPFlag("http_addr", f.Lookup("addr"))
	_ = opts.v.BindPFlag("watch", f.Lookup("watch"))
	_ = opts.v.BindPFlag("watch_debounce", f.Lookup("watch-debounce"))
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := wire.Build(ctx, cfg, version.Short())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if app.Watcher != nil {
		g.Go(func() error {
			return app.Watcher.Run(gctx)
		})
	}

	switch {
	case app.Server != nil:
		g.Go(func() error {
			slog.Info("HTTP + MCP server listening", "addr", app.Server.Addr)
			if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := app.Server.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
			return nil
		})
	default:
		g.Go(func() error {
			// Client hang-up ends the process.
			defer cancel()
			slog.Info("MCP stdio server ready")
			return app.MCPServer.ServeStdio(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	slog.Info("twig server stopped")
	return err
}
