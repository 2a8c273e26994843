package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
)

func insert(t *testing.T, s *SQLiteStorage, txn *model.Transaction) int64 {
	t.Helper()
	var id int64
	err := s.WithUnitOfWork(context.Background(), func(u service.UnitOfWork) error {
		var err error
		id, err = u.InsertTransaction(context.Background(), txn)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestSQLiteStorage_InsertAndGetTransaction(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := createTestStorage(t, driver)
			ctx := context.Background()
			f := seed(t, store, "0")

			txn := newTxn(f, "42.10", model.KindExpense, "2024-05-06")
			// Time of day is dropped.
			txn.Date = txn.Date.Add(15 * time.Hour)
			id := insert(t, store, txn)

			got, err := store.GetTransaction(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, "2024-05-06", got.Date.Format(model.DateLayout))
			assert.Equal(t, "42.10", got.Amount.String())
			assert.Equal(t, model.KindExpense, got.Kind)
			assert.Equal(t, "Groceries", got.CategoryName)
			assert.Equal(t, "Checking", got.AccountName)
			assert.Empty(t, got.ExternalID)

			missing, err := store.GetTransaction(ctx, id+1)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestSQLiteStorage_InsertTransactionValidation(t *testing.T) {
	store := createTestStorage(t, DriverMattn)
	ctx := context.Background()
	f := seed(t, store, "0")

	bad := newTxn(f, "-1", model.KindExpense, "2024-01-01")
	err := store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		_, err := u.InsertTransaction(ctx, bad)
		return err
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	// A dangling reference trips the foreign key backstop.
	dangling := newTxn(f, "1", model.KindExpense, "2024-01-01")
	dangling.AccountID = 999
	err = store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		_, err := u.InsertTransaction(ctx, dangling)
		return err
	})
	assert.ErrorIs(t, err, common.ErrStorage)

	txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestSQLiteStorage_UpdateAndDeleteTransaction(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := createTestStorage(t, driver)
			ctx := context.Background()
			f := seed(t, store, "0")

			id := insert(t, store, newTxn(f, "10", model.KindExpense, "2024-01-01"))

			revised := newTxn(f, "2500", model.KindIncome, "2024-01-31")
			revised.ID = id
			revised.Description = "paycheck"
			require.NoError(t, store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
				return u.UpdateTransaction(ctx, revised)
			}))

			got, err := store.GetTransaction(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "paycheck", got.Description)
			assert.Equal(t, model.KindIncome, got.Kind)
			assert.Equal(t, "Salary", got.CategoryName)
			assert.Equal(t, "2024-01-31", got.Date.Format(model.DateLayout))

			ghost := newTxn(f, "1", model.KindIncome, "2024-01-31")
			ghost.ID = id + 100
			err = store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
				return u.UpdateTransaction(ctx, ghost)
			})
			assert.ErrorIs(t, err, common.ErrConflict)

			require.NoError(t, store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
				return u.DeleteTransaction(ctx, id)
			}))
			err = store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
				return u.DeleteTransaction(ctx, id)
			})
			assert.ErrorIs(t, err, common.ErrConflict)
		})
	}
}

func TestSQLiteStorage_ExternalIDs(t *testing.T) {
	store := createTestStorage(t, DriverMattn)
	ctx := context.Background()
	f := seed(t, store, "0")

	first := newTxn(f, "10", model.KindExpense, "2024-01-01")
	first.ExternalID = "FITID-1"
	id := insert(t, store, first)

	// Entries without an external ID never collide.
	insert(t, store, newTxn(f, "1", model.KindExpense, "2024-01-01"))
	insert(t, store, newTxn(f, "2", model.KindExpense, "2024-01-01"))

	err := store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		found, err := u.FindTransactionByExternalID(ctx, f.account.ID, "FITID-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)

		none, err := u.FindTransactionByExternalID(ctx, f.account.ID, "FITID-2")
		require.NoError(t, err)
		assert.Nil(t, none)

		_, err = u.FindTransactionByExternalID(ctx, f.account.ID, " ")
		assert.ErrorIs(t, err, ErrEmptyString)
		return nil
	})
	require.NoError(t, err)

	dup := newTxn(f, "10", model.KindExpense, "2024-01-01")
	dup.ExternalID = "FITID-1"
	err = store.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		_, err := u.InsertTransaction(ctx, dup)
		return err
	})
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestSQLiteStorage_ListTransactions(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := createTestStorage(t, driver)
			ctx := context.Background()
			f := seed(t, store, "0")
			other, err := store.CreateAccount(ctx, "Card", money.Zero)
			require.NoError(t, err)

			a := insert(t, store, newTxn(f, "1", model.KindExpense, "2024-01-10"))
			b := insert(t, store, newTxn(f, "2", model.KindIncome, "2024-02-10"))
			c := insert(t, store, newTxn(f, "3", model.KindExpense, "2024-02-10"))
			onCard := newTxn(f, "4", model.KindExpense, "2024-03-01")
			onCard.AccountID = other.ID
			d := insert(t, store, onCard)

			ids := func(txns []model.Transaction) []int64 {
				out := make([]int64, 0, len(txns))
				for _, txn := range txns {
					out = append(out, txn.ID)
				}
				return out
			}
			day := func(s string) *time.Time {
				parsed, err := model.ParseDay(s)
				require.NoError(t, err)
				return &parsed
			}

			tests := []struct {
				name   string
				filter service.TransactionFilter
				want   []int64
			}{
				{name: "all newest first, ties by id", want: []int64{d, c, b, a}},
				{name: "by account", filter: service.TransactionFilter{AccountID: f.account.ID}, want: []int64{c, b, a}},
				{name: "by category", filter: service.TransactionFilter{CategoryID: f.income.ID}, want: []int64{b}},
				{name: "by kind", filter: service.TransactionFilter{Kind: model.KindExpense}, want: []int64{d, c, a}},
				{
					name:   "date range is inclusive",
					filter: service.TransactionFilter{StartDate: day("2024-02-10"), EndDate: day("2024-03-01")},
					want:   []int64{d, c, b},
				},
				{name: "limit", filter: service.TransactionFilter{Limit: 2}, want: []int64{d, c}},
				{name: "limit and offset", filter: service.TransactionFilter{Limit: 2, Offset: 2}, want: []int64{b, a}},
				{name: "offset only", filter: service.TransactionFilter{Offset: 3}, want: []int64{a}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					txns, err := store.ListTransactions(ctx, tt.filter)
					require.NoError(t, err)
					assert.Equal(t, tt.want, ids(txns))
				})
			}

			_, err = store.ListTransactions(ctx, service.TransactionFilter{StartDate: day("2024-03-01"), EndDate: day("2024-01-01")})
			assert.ErrorIs(t, err, ErrInvalidDateRange)
			_, err = store.ListTransactions(ctx, service.TransactionFilter{Kind: "gift"})
			assert.ErrorIs(t, err, common.ErrValidation)
			_, err = store.ListTransactions(ctx, service.TransactionFilter{Limit: -1})
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}
