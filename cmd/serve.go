package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/bnema/wg-scraper/internal/adapters/http"
	"github.com/bnema/wg-scraper/internal/version"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(state *appState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the monitoring HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			if addr == "" {
				addr = app.cfg.HTTP.Addr
			}

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, app, listener)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :5001)")

	return cmd
}

func serve(ctx context.Context, app *app, listener net.Listener) error {
	handler := httpapi.NewHandler(app.service, app.scheduler, app.stats, configView(app), version.Version)
	server := &http.Server{
		Handler:           httpapi.NewRouter(handler, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.scheduler.Start(ctx)
	app.logger.Info("http server listening", "addr", listener.Addr().String())

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		app.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	serveErr := group.Wait()

	app.scheduler.Stop()
	app.executor.Close()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := app.executor.Wait(drainCtx); err != nil {
		app.logger.Warn("in-flight runs did not finish", "error", err, "in_flight", app.executor.InFlight())
	}

	return serveErr
}

func configView(app *app) httpapi.ConfigView {
	return httpapi.ConfigView{
		PollIntervalMinutes:       app.cfg.Scheduler.Interval.Minutes(),
		FreshnessThresholdMinutes: app.cfg.Scheduler.Freshness.Minutes(),
		MaxConcurrent:             app.executor.Capacity(),
	}
}
