package storage

import (
	"context"

	"github.com/Veraticus/tally/internal/common"
)

// CanDeleteAccount reports whether no transaction references the account.
// It never deletes anything; DeleteAccount runs this check itself in the same unit of work.
func (s *SQLiteStorage) CanDeleteAccount(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return canDeleteAccountTx(ctx, s.db, id)
}

// CanDeleteCategory reports whether no transaction references the category.
func (s *SQLiteStorage) CanDeleteCategory(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return canDeleteCategoryTx(ctx, s.db, id)
}

func canDeleteAccountTx(ctx context.Context, q queryable, id int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id).Scan(&count)
	if err != nil {
		return false, common.Storage("failed to count account references", err)
	}
	return count == 0, nil
}

func canDeleteCategoryTx(ctx context.Context, q queryable, id int64) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&count)
	if err != nil {
		return false, common.Storage("failed to count category references", err)
	}
	return count == 0, nil
}
