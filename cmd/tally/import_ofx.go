package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) importOFXCmd() *cobra.Command {
	var (
		target        ledger.ImportTarget
		sourceAccount string
		dryRun        bool
		noProgress    bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <file>",
		Short: "Import transactions from an OFX/QFX file",
		Long: `Import transactions from an OFX or QFX statement downloaded from your bank.

Negative amounts are posted as expenses under --expense-category, everything else as
income under --income-category. Entries whose FITID was already imported into the
account are skipped, so re-importing an overlapping statement is safe.`,
		Example: `  tally import-ofx statement.qfx --account 1 --income-category 3 --expense-category 4`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			file, err := os.Open(path) //nolint:gosec // User-provided file path is expected
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer func() { _ = file.Close() }()

			entries, err := ofx.NewParser().ParseFile(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
			if sourceAccount != "" {
				entries = filterSource(entries, sourceAccount)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Found %d transactions in %s", len(entries), filepath.Base(path))))
			if dryRun || len(entries) == 0 {
				return nil
			}

			handler := cli.NewInterruptHandler(out, "Import",
				"Entries posted so far are kept; re-run the import to continue.")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			return a.withEngine(ctx, func(engine *ledger.Engine, _ *storage.SQLiteStorage) error {
				importer := ledger.NewImporter(engine)
				if !noProgress {
					bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(entries), "Importing")
					importer.OnEntry = func(_, _ int) { _ = bar.Add(1) }
				}

				result, err := importer.Import(ctx, entries, target)
				if result != nil {
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Posted %d, skipped %d already imported, %d failed",
						result.Posted, result.Skipped, result.Failed)))
					for _, entryErr := range result.Errors {
						fmt.Fprintln(out, cli.FormatError(entryErr.Error()))
					}
				}
				if err != nil {
					if handler.WasInterrupted() {
						return nil
					}
					return fmt.Errorf("import failed: %w", err)
				}
				if result.Failed > 0 {
					return errors.Join(result.Errors...)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&target.AccountID, "account", 0, "account ID to post into")
	cmd.Flags().Int64Var(&target.IncomeCategoryID, "income-category", 0, "category ID for deposits")
	cmd.Flags().Int64Var(&target.ExpenseCategoryID, "expense-category", 0, "category ID for withdrawals")
	cmd.Flags().StringVar(&sourceAccount, "source", "", "only import entries of this statement account (ACCTID)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file without posting anything")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("income-category")
	_ = cmd.MarkFlagRequired("expense-category")

	return cmd
}

func filterSource(entries []ofx.Entry, source string) []ofx.Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e.SourceAccount == source {
			kept = append(kept, e)
		}
	}
	return kept
}
