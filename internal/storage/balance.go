package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/money"
)

// adjustBalanceTx is the balance adjuster: a read-modify-write of one account balance inside
// the caller's transaction. The write is a compare-and-set against the text that was read, so
// an interleaved writer turns into ErrStaleBalance instead of a lost update.
func adjustBalanceTx(ctx context.Context, q queryable, accountID int64, delta money.Amount) (money.Amount, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return money.Zero, common.NotFoundf("account %d", accountID)
	}
	if err != nil {
		return money.Zero, common.Storage("failed to read balance", err)
	}

	current, err := money.Parse(raw)
	if err != nil {
		return money.Zero, common.Storage(fmt.Sprintf("failed to decode balance of account %d", accountID), err)
	}

	newBalance := current.Add(delta)

	result, err := q.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ? AND balance = ?`,
		newBalance, accountID, raw)
	if err != nil {
		return money.Zero, common.Storage("failed to update balance", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return money.Zero, common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return money.Zero, fmt.Errorf("account %d: %w", accountID, common.ErrStaleBalance)
	}

	return newBalance, nil
}
