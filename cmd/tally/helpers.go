package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func (a *app) initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.Database.Path, a.cfg.StorageOptions()...)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStore runs fn against an initialized store and closes it afterwards.
func (a *app) withStore(ctx context.Context, fn func(*storage.SQLiteStorage) error) error {
	store, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(store)
}

// withEngine is withStore with a ledger engine on top.
func (a *app) withEngine(ctx context.Context, fn func(*ledger.Engine, *storage.SQLiteStorage) error) error {
	return a.withStore(ctx, func(store *storage.SQLiteStorage) error {
		return fn(ledger.NewEngine(store), store)
	})
}

// retry replays a balance-changing operation that lost a race with a concurrent writer.
func (a *app) retry(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, a.cfg.Retry)
}

func (a *app) amount(x money.Amount) string {
	return cli.FormatAmount(x, a.cfg.Display.Currency)
}

// confirm asks before a destructive command unless --yes was given.
func (a *app) confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(cmd.Context(), question)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Validationf("invalid %s ID %q", what, s)
	}
	return id, nil
}

func notFound(what string, id int64) error {
	return common.NotFoundf("%s %d", what, id)
}

func parseDate(s string) (time.Time, error) {
	d, err := model.ParseDay(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, common.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func parseAmount(s string) (money.Amount, error) {
	a, err := money.Parse(s)
	if err != nil {
		return money.Zero, common.Validationf("%v", err)
	}
	return a, nil
}

func parseKind(s string) (model.Kind, error) {
	k, err := model.ParseKind(s)
	if err != nil {
		return "", common.Validationf("%v", err)
	}
	return k, nil
}

// filterFlags are the transaction filter flags shared by txn list and summary.
type filterFlags struct {
	kind       string
	from       string
	to         string
	accountID  int64
	categoryID int64
	limit      int
	offset     int
}

func (f *filterFlags) register(cmd *cobra.Command, paginate bool) {
	cmd.Flags().Int64Var(&f.accountID, "account", 0, "only transactions of this account ID")
	cmd.Flags().Int64Var(&f.categoryID, "category", 0, "only transactions of this category ID")
	cmd.Flags().StringVar(&f.kind, "kind", "", "only income or expense transactions")
	cmd.Flags().StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD)")
	if paginate {
		cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of transactions (0 for all)")
		cmd.Flags().IntVar(&f.offset, "offset", 0, "number of transactions to skip")
	}
}

func (f *filterFlags) build() (service.TransactionFilter, error) {
	filter := service.TransactionFilter{
		AccountID:  f.accountID,
		CategoryID: f.categoryID,
		Limit:      f.limit,
		Offset:     f.offset,
	}
	if f.kind != "" {
		k, err := parseKind(f.kind)
		if err != nil {
			return filter, err
		}
		filter.Kind = k
	}
	if f.from != "" {
		d, err := parseDate(f.from)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &d
	}
	if f.to != "" {
		d, err := parseDate(f.to)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &d
	}
	return filter, nil
}
