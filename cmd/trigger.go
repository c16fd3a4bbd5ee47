package cmd

import (
	"context"
	"fmt"
	"time"

	httpapi "github.com/bnema/wg-scraper/internal/adapters/http"
	"github.com/bnema/wg-scraper/internal/application"
	"github.com/spf13/cobra"
)

func newTriggerCmd(state *appState) *cobra.Command {
	var asJSON bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Run one discovery pass now and wait for the submitted accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var result application.TriggerResult
			pass := func(ctx context.Context) error {
				var err error
				result, err = app.scheduler.Trigger(ctx)
				app.executor.Close()
				if err != nil {
					return err
				}
				return app.executor.Wait(ctx)
			}

			var err error
			if asJSON {
				err = pass(ctx)
			} else {
				err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Scraping ready accounts...", pass)
			}
			if err != nil {
				return err
			}

			snapshot := app.stats.Snapshot()
			if asJSON {
				return writeJSON(cmd, struct {
					application.TriggerResult
					Stats httpapi.StatsResponse `json:"stats"`
				}{result, httpapi.NewStatsResponse(snapshot, configView(app))})
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ready: %d, submitted: %d, saturated: %d, duplicate: %d\n",
				result.Ready, result.Submitted, result.Saturated, result.Duplicate)
			rendered, err := app.renderStats(snapshot, app.schedulerSettings())
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum time to wait for submitted runs")

	return cmd
}
