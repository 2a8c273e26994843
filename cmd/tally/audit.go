package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) auditCmd() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check cached balances against the transaction log",
		Long: `Recompute every account balance as its opening balance plus the signed amounts of
its transactions and report accounts whose stored balance differs. With --repair the
stored balances are corrected in a single database transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withEngine(cmd.Context(), func(engine *ledger.Engine, _ *storage.SQLiteStorage) error {
				var (
					found []ledger.Discrepancy
					err   error
				)
				if repair {
					found, err = engine.Repair(cmd.Context())
				} else {
					found, err = engine.Audit(cmd.Context())
				}
				if err != nil {
					return fmt.Errorf("audit failed: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(found) == 0 {
					fmt.Fprintln(out, cli.FormatSuccess("All balances match their transactions"))
					return nil
				}

				rows := make([][]string, 0, len(found))
				for _, d := range found {
					rows = append(rows, []string{
						strconv.FormatInt(d.AccountID, 10),
						d.AccountName,
						a.amount(d.Cached),
						a.amount(d.Computed),
						a.amount(d.Drift()),
					})
				}
				if err := cli.WriteTable(out, []string{"ID", "Account", "Stored", "Computed", "Drift"}, rows); err != nil {
					return err
				}

				if repair {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Repaired %d account(s)", len(found))))
				} else {
					fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d account(s) out of balance. Run 'tally audit --repair' to fix.", len(found))))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "correct the stored balances")

	return cmd
}
