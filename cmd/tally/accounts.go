package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List, add, rename, and delete the accounts transactions are posted to.`,
	}

	cmd.AddCommand(a.listAccountsCmd())
	cmd.AddCommand(a.addAccountCmd())
	cmd.AddCommand(a.renameAccountCmd())
	cmd.AddCommand(a.deleteAccountCmd())

	return cmd
}

func (a *app) listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				accounts, err := store.ListAccounts(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(accounts) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No accounts found. Use 'tally accounts add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(accounts))
				for _, acct := range accounts {
					rows = append(rows, []string{
						strconv.FormatInt(acct.ID, 10),
						acct.Name,
						a.amount(acct.OpeningBalance),
						a.amount(acct.Balance),
					})
				}
				return cli.WriteTable(out, []string{"ID", "Name", "Opening", "Balance"}, rows)
			})
		},
	}
}

func (a *app) addAccountCmd() *cobra.Command {
	var opening string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Long:  `Create an account. Its balance starts at the opening balance.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := parseAmount(opening)
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				acct, err := store.CreateAccount(cmd.Context(), args[0], initial)
				if err != nil {
					return fmt.Errorf("failed to create account: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created account %q (ID: %d) with balance %s",
					acct.Name, acct.ID, a.amount(acct.Balance))))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opening, "opening", "0", "opening balance")

	return cmd
}

func (a *app) renameAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				if err := store.UpdateAccount(cmd.Context(), id, args[1]); err != nil {
					return fmt.Errorf("failed to rename account: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed account %d to %q", id, args[1])))
				return nil
			})
		},
	}
}

func (a *app) deleteAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Long:  `Delete an account. Accounts that still have transactions cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				acct, err := store.GetAccount(cmd.Context(), id)
				if err != nil {
					return err
				}
				if acct == nil {
					return notFound("account", id)
				}

				ok, err := a.confirm(cmd, fmt.Sprintf("Delete account %q?", acct.Name))
				if err != nil || !ok {
					return err
				}

				if err := store.DeleteAccount(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete account: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted account %q", acct.Name)))
				return nil
			})
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}
