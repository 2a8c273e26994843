package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; this one only reports the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.Info("Starting database migration",
				"database", a.cfg.Database.Path,
				"driver", a.cfg.Database.Driver)

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				version, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Database %s is at schema version %d",
					store.Path(), version)))
				return nil
			})
		},
	}
}
