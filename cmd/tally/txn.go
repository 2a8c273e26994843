package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) txnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transactions"},
		Short:   "Post, revise, and retract transactions",
		Long: `Work with the transaction log. Posting, revising and retracting a transaction
adjusts the affected account balances in the same database transaction.`,
	}

	cmd.AddCommand(a.listTxnCmd())
	cmd.AddCommand(a.showTxnCmd())
	cmd.AddCommand(a.postTxnCmd())
	cmd.AddCommand(a.reviseTxnCmd())
	cmd.AddCommand(a.retractTxnCmd())

	return cmd
}

func (a *app) listTxnCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := flags.build()
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				txns, err := store.ListTransactions(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No transactions found."))
					return nil
				}

				rows := make([][]string, 0, len(txns))
				for _, txn := range txns {
					rows = append(rows, []string{
						strconv.FormatInt(txn.ID, 10),
						txn.Date.Format(model.DateLayout),
						txn.AccountName,
						txn.CategoryName,
						a.amount(txn.SignedAmount()),
						txn.Description,
					})
				}
				return cli.WriteTable(out, []string{"ID", "Date", "Account", "Category", "Amount", "Description"}, rows)
			})
		},
	}

	flags.register(cmd, true)

	return cmd
}

func (a *app) showTxnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				txn, err := store.GetTransaction(cmd.Context(), id)
				if err != nil {
					return err
				}
				if txn == nil {
					return notFound("transaction", id)
				}

				a.printTransaction(cmd.OutOrStdout(), txn)
				return nil
			})
		},
	}
}

// txnFlags are the editable fields of a transaction.
type txnFlags struct {
	kind        string
	amount      string
	date        string
	description string
	externalID  string
	accountID   int64
	categoryID  int64
}

func (f *txnFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.accountID, "account", 0, "account ID")
	cmd.Flags().Int64Var(&f.categoryID, "category", 0, "category ID")
	cmd.Flags().StringVar(&f.kind, "kind", "", "income or expense")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount as a positive decimal, e.g. 12.50")
	cmd.Flags().StringVar(&f.date, "date", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.description, "description", "", "free text")
	cmd.Flags().StringVar(&f.externalID, "external-id", "", "identity in an import source")
}

// apply copies the flags the user set onto txn.
func (f *txnFlags) apply(cmd *cobra.Command, txn *model.Transaction) error {
	flags := cmd.Flags()
	if flags.Changed("account") {
		txn.AccountID = f.accountID
	}
	if flags.Changed("category") {
		txn.CategoryID = f.categoryID
	}
	if flags.Changed("kind") {
		k, err := parseKind(f.kind)
		if err != nil {
			return err
		}
		txn.Kind = k
	}
	if flags.Changed("amount") {
		amt, err := parseAmount(f.amount)
		if err != nil {
			return err
		}
		txn.Amount = amt
	}
	if flags.Changed("date") {
		d, err := parseDate(f.date)
		if err != nil {
			return err
		}
		txn.Date = d
	}
	if flags.Changed("description") {
		txn.Description = strings.TrimSpace(f.description)
	}
	if flags.Changed("external-id") {
		txn.ExternalID = strings.TrimSpace(f.externalID)
	}
	return nil
}

func (a *app) postTxnCmd() *cobra.Command {
	var flags txnFlags

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Record a new transaction",
		Example: `  tally txn post --account 1 --category 2 --kind expense --amount 200 --description rent
  tally txn post --account 1 --category 3 --kind income --amount 1500 --date 2024-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txn := &model.Transaction{Date: model.Day(time.Now())}
			if err := flags.apply(cmd, txn); err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(engine *ledger.Engine, store *storage.SQLiteStorage) error {
				var posted *model.Transaction
				err := a.retry(cmd.Context(), func() error {
					var err error
					posted, err = engine.Post(cmd.Context(), txn)
					return err
				})
				if err != nil {
					return fmt.Errorf("failed to post transaction: %w", err)
				}

				return a.reportBalance(cmd, store, fmt.Sprintf("Posted transaction %d", posted.ID), posted.AccountID)
			})
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (a *app) reviseTxnCmd() *cobra.Command {
	var flags txnFlags

	cmd := &cobra.Command{
		Use:   "revise <id>",
		Short: "Change a recorded transaction",
		Long: `Change any field of a transaction. Unset flags keep their current value. Moving a
transaction to another account updates both balances.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(engine *ledger.Engine, store *storage.SQLiteStorage) error {
				current, err := store.GetTransaction(cmd.Context(), id)
				if err != nil {
					return err
				}
				if current == nil {
					return notFound("transaction", id)
				}
				oldAccount := current.AccountID

				if err := flags.apply(cmd, current); err != nil {
					return err
				}

				var revised *model.Transaction
				err = a.retry(cmd.Context(), func() error {
					var err error
					revised, err = engine.Revise(cmd.Context(), current)
					return err
				})
				if err != nil {
					return fmt.Errorf("failed to revise transaction: %w", err)
				}

				msg := fmt.Sprintf("Revised transaction %d", revised.ID)
				if oldAccount != revised.AccountID {
					if err := a.reportBalance(cmd, store, msg, oldAccount); err != nil {
						return err
					}
					msg = "Moved to"
				}
				return a.reportBalance(cmd, store, msg, revised.AccountID)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func (a *app) retractTxnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retract <id>",
		Short: "Delete a transaction and undo its effect on the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(engine *ledger.Engine, store *storage.SQLiteStorage) error {
				txn, err := store.GetTransaction(cmd.Context(), id)
				if err != nil {
					return err
				}
				if txn == nil {
					return notFound("transaction", id)
				}

				ok, err := a.confirm(cmd, fmt.Sprintf("Retract %s of %s on %s?",
					txn.Kind, txn.Amount.Display(a.cfg.Display.Currency), txn.Date.Format(model.DateLayout)))
				if err != nil || !ok {
					return err
				}

				err = a.retry(cmd.Context(), func() error {
					return engine.Retract(cmd.Context(), id)
				})
				if err != nil {
					return fmt.Errorf("failed to retract transaction: %w", err)
				}

				return a.reportBalance(cmd, store, fmt.Sprintf("Retracted transaction %d", id), txn.AccountID)
			})
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}

// reportBalance prints msg followed by the current balance of the account.
func (a *app) reportBalance(cmd *cobra.Command, store *storage.SQLiteStorage, msg string, accountID int64) error {
	acct, err := store.GetAccount(cmd.Context(), accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return notFound("account", accountID)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %s balance is %s",
		msg, acct.Name, a.amount(acct.Balance))))
	return nil
}

func (a *app) printTransaction(w io.Writer, txn *model.Transaction) {
	lines := []string{
		fmt.Sprintf("Date:        %s", txn.Date.Format(model.DateLayout)),
		fmt.Sprintf("Account:     %s (%d)", txn.AccountName, txn.AccountID),
		fmt.Sprintf("Category:    %s (%d)", txn.CategoryName, txn.CategoryID),
		fmt.Sprintf("Kind:        %s", txn.Kind),
		fmt.Sprintf("Amount:      %s", a.amount(txn.SignedAmount())),
	}
	if txn.Description != "" {
		lines = append(lines, fmt.Sprintf("Description: %s", txn.Description))
	}
	if txn.ExternalID != "" {
		lines = append(lines, fmt.Sprintf("External ID: %s", txn.ExternalID))
	}

	fmt.Fprintln(w, cli.RenderBox(fmt.Sprintf("Transaction %d", txn.ID), strings.Join(lines, "\n")))
}
