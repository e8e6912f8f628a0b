package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/dashgrid"
	httpAdapter "github.com/aretw0/dashgrid/internal/adapters/http"
	"github.com/aretw0/dashgrid/internal/cli"
	"github.com/aretw0/dashgrid/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts the dashgrid engine behind a JSON API over HTTP, with an SSE layout stream and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp(ctx, cmd, cli.Options{})
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		srv := &http.Server{
			Addr: addr,
			Handler: httpAdapter.NewHandler(app.Engine,
				httpAdapter.WithMetrics(app.Metrics.Handler()),
				httpAdapter.WithLogger(app.Logger),
				httpAdapter.WithVersion(strings.TrimSpace(dashgrid.Version)),
			),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("dashgrid server listening", "address", addr, "layout_id", app.Config.Store.LayoutID)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			app.Logger.Info("shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			app.Logger.Info("dashgrid server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default server.addr)")
}
