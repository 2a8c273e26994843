package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
)

func TestAuditAndRepair(t *testing.T) {
	db, engine := setup(t)
	ctx := context.Background()
	a := db.MustAccount("A", "1000")
	b := db.MustAccount("B", "0")

	_, err := engine.Post(ctx, txnFor(db, a, model.KindExpense, "200"))
	require.NoError(t, err)
	_, err = engine.Post(ctx, txnFor(db, b, model.KindIncome, "10"))
	require.NoError(t, err)

	found, err := engine.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)

	// Move A's cached balance without a transaction to explain it.
	require.NoError(t, db.Storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		_, err := u.AdjustBalance(ctx, a.ID, money.MustParse("3.50"))
		return err
	}))

	found, err = engine.Audit(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].AccountID)
	assert.Equal(t, "A", found[0].AccountName)
	assert.Equal(t, "803.50", found[0].Cached.String())
	assert.Equal(t, "800.00", found[0].Computed.String())
	assert.Equal(t, "-3.50", found[0].Drift().String())

	// Audit is read-only.
	assertBalance(t, db, a.ID, "803.50")

	fixed, err := engine.Repair(ctx)
	require.NoError(t, err)
	assert.Len(t, fixed, 1)
	assertBalance(t, db, a.ID, "800.00")
	assertBalance(t, db, b.ID, "10.00")

	found, err = engine.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)

	fixed, err = engine.Repair(ctx)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}
