package cmd

import (
	"time"

	httpapi "github.com/bnema/wg-scraper/internal/adapters/http"
	"github.com/bnema/wg-scraper/internal/adapters/render/report"
	"github.com/spf13/cobra"
)

func newStatsCmd(state *appState) *cobra.Command {
	var serverURL string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run statistics from a running server or this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app

			response := httpapi.NewStatsResponse(app.stats.Snapshot(), configView(app))
			if serverURL != "" {
				client := &httpapi.Client{BaseURL: serverURL, HTTPClient: app.httpClient}
				remote, err := client.Stats(cmd.Context())
				if err != nil {
					return err
				}
				response = remote
			}

			if asJSON {
				return writeJSON(cmd, response)
			}

			rendered, err := app.renderStats(response.Snapshot(), report.Options{
				Now:           app.now(),
				PollInterval:  minutes(response.Config.PollIntervalMinutes),
				Freshness:     minutes(response.Config.FreshnessThresholdMinutes),
				MaxConcurrent: response.Config.MaxConcurrent,
				HistoryLimit:  10,
			})
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", envOrDefault("WGS_SERVER_URL", ""), "Base URL of a running wgs serve (default: local, empty stats)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func minutes(value float64) time.Duration {
	return time.Duration(value * float64(time.Minute))
}
