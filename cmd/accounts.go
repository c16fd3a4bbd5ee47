package cmd

import (
	"fmt"

	httpapi "github.com/bnema/wg-scraper/internal/adapters/http"
	tomlrepo "github.com/bnema/wg-scraper/internal/adapters/repo/toml"
	"github.com/bnema/wg-scraper/internal/application"
	"github.com/spf13/cobra"
)

func newAccountsCmd(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Inspect and import scraping accounts",
	}

	cmd.AddCommand(
		newAccountsListCmd(state),
		newAccountsImportCmd(state),
	)

	return cmd
}

func newAccountsListCmd(state *appState) *cobra.Command {
	var readyOnly bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured accounts with their readiness and session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app

			var statuses []application.AccountStatus
			var err error
			if readyOnly {
				statuses, err = app.service.ListReady(cmd.Context())
			} else {
				statuses, err = app.service.ListAccounts(cmd.Context())
			}
			if err != nil {
				return err
			}

			if asJSON {
				views := make([]httpapi.AccountView, 0, len(statuses))
				for _, status := range statuses {
					views = append(views, httpapi.NewAccountView(status, true))
				}
				return writeJSON(cmd, views)
			}

			rendered, err := app.renderAccounts(statuses, app.schedulerSettings())
			return writeRendered(cmd, rendered, err)
		},
	}

	cmd.Flags().BoolVar(&readyOnly, "ready", false, "Only show accounts due for a scrape")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newAccountsImportCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "import <accounts.toml>",
		Short: "Copy accounts from a TOML file into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := state.app

			source, err := tomlrepo.NewRepository(args[0], app.cfg.Website)
			if err != nil {
				return err
			}

			accounts, err := source.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			for _, account := range accounts {
				if err := app.repo.SaveAccount(cmd.Context(), account); err != nil {
					return fmt.Errorf("import account %s: %w", account.ID, err)
				}
				app.logger.Debug("account imported", "account_id", account.ID, "email", account.Credentials.Email)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d accounts into %s store\n", len(accounts), app.cfg.Store.Driver)
			return err
		},
	}
}
