package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) summaryCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show balance, income and expenses",
		Long: `Total the transactions matching the filters. The balance covers every account,
or only the account given with --account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := flags.build()
			if err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(engine *ledger.Engine, _ *storage.SQLiteStorage) error {
				summary, err := engine.Summarize(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("failed to summarize: %w", err)
				}

				lines := []string{
					fmt.Sprintf("Balance:      %s", a.amount(summary.Balance)),
					fmt.Sprintf("Income:       %s", a.amount(summary.Income)),
					fmt.Sprintf("Expenses:     %s", a.amount(summary.Expenses)),
					fmt.Sprintf("Net:          %s", a.amount(summary.Net())),
					fmt.Sprintf("Transactions: %d", summary.Count),
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.LedgerIcon+" Summary", strings.Join(lines, "\n")))
				return nil
			})
		},
	}

	flags.register(cmd, false)

	return cmd
}
