package cmd

import (
	"github.com/bnema/wg-scraper/internal/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	state := &appState{}
	defer state.close()

	return newRootCmd(state).Execute()
}

func newRootCmd(state *appState) *cobra.Command {
	var opts config.LoadOptions

	rootCmd := &cobra.Command{
		Use:           "wgs",
		Short:         "wg-scraper (wgs): scrape WG-Gesucht searches and contact new listings",
		Long:          "wgs keeps a fleet of WG-Gesucht accounts busy: it polls for accounts whose last scrape is stale, fetches new listings, keeps their sessions alive and messages new offers. A small HTTP API exposes stats and a manual trigger.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.wire(opts, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/wgs/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Environment file loaded before reading configuration")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(state),
		newTriggerCmd(state),
		newAccountsCmd(state),
		newStatsCmd(state),
	)

	return rootCmd
}
