package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func TestSummarize(t *testing.T) {
	db, engine := setup(t)
	ctx := context.Background()
	a := db.MustAccount("A", "1000")
	b := db.MustAccount("B", "50")

	for _, txn := range []*model.Transaction{
		txnFor(db, a, model.KindIncome, "2500"),
		txnFor(db, a, model.KindExpense, "120.40"),
		txnFor(db, a, model.KindExpense, "79.60"),
		txnFor(db, b, model.KindExpense, "20"),
	} {
		_, err := engine.Post(ctx, txn)
		require.NoError(t, err)
	}

	all, err := engine.Summarize(ctx, service.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Count, "pagination is ignored")
	assert.Equal(t, "3330.00", all.Balance.String())
	assert.Equal(t, "2500.00", all.Income.String())
	assert.Equal(t, "220.00", all.Expenses.String())
	assert.Equal(t, "2280.00", all.Net().String())

	onlyA, err := engine.Summarize(ctx, service.TransactionFilter{AccountID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, onlyA.Count)
	assert.Equal(t, "3300.00", onlyA.Balance.String())
	assert.Equal(t, "200.00", onlyA.Expenses.String())

	expenses, err := engine.Summarize(ctx, service.TransactionFilter{Kind: model.KindExpense})
	require.NoError(t, err)
	assert.True(t, expenses.Income.IsZero())
	assert.Equal(t, 3, expenses.Count)
}
