package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// selectTransactionSQL returns decorated rows. LEFT JOIN keeps a transaction visible even if its
// names cannot be resolved.
const selectTransactionSQL = `
	SELECT t.id, t.description, t.amount, t.date, t.kind, t.category_id, t.account_id,
	       COALESCE(t.external_id, ''), COALESCE(c.name, ''), COALESCE(a.name, '')
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN accounts a ON a.id = t.account_id`

// GetTransaction returns a decorated transaction by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionTx(ctx, s.db, id)
}

func getTransactionTx(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx, selectTransactionSQL+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func findTransactionByExternalIDTx(ctx context.Context, q queryable, accountID int64, externalID string) (*model.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx,
		selectTransactionSQL+` WHERE t.account_id = ? AND t.external_id = ?`,
		accountID, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns decorated transactions matching the filter, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return listTransactionsTx(ctx, s.db, filter)
}

func listTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)

	if filter.AccountID > 0 {
		where = append(where, "t.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID > 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Kind != "" {
		where = append(where, "t.kind = ?")
		args = append(args, string(filter.Kind))
	}
	// Dates are stored as YYYY-MM-DD so text comparison is chronological.
	if filter.StartDate != nil {
		where = append(where, "t.date >= ?")
		args = append(args, model.Day(*filter.StartDate).Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		where = append(where, "t.date <= ?")
		args = append(args, model.Day(*filter.EndDate).Format(model.DateLayout))
	}

	query := selectTransactionSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id DESC"

	switch {
	case filter.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.Storage("failed to query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, common.Storage("error iterating transactions", err)
	}

	slog.DebugContext(ctx, "retrieved transactions", "count", len(transactions))
	return transactions, nil
}

func insertTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (description, amount, date, kind, category_id, account_id, external_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(txn.Description),
		txn.Amount,
		model.Day(txn.Date).Format(model.DateLayout),
		string(txn.Kind),
		txn.CategoryID,
		txn.AccountID,
		externalID(txn.ExternalID),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, common.Storage("failed to insert transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, common.Storage("failed to get transaction ID", err)
	}
	return id, nil
}

func updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, date = ?, kind = ?, category_id = ?, account_id = ?, external_id = ?
		WHERE id = ?`,
		strings.TrimSpace(txn.Description),
		txn.Amount,
		model.Day(txn.Date).Format(model.DateLayout),
		string(txn.Kind),
		txn.CategoryID,
		txn.AccountID,
		externalID(txn.ExternalID),
		txn.ID,
	)
	if err != nil {
		return common.Storage("failed to update transaction", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: transaction %d was not updated", common.ErrConflict, txn.ID)
	}
	return nil
}

func deleteTransactionTx(ctx context.Context, q queryable, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return common.Storage("failed to delete transaction", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: transaction %d was not deleted", common.ErrConflict, id)
	}
	return nil
}

// externalID stores an empty import identity as NULL so the partial unique index ignores it.
func externalID(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn  model.Transaction
		date string
		kind string
	)
	err := row.Scan(
		&txn.ID,
		&txn.Description,
		&txn.Amount,
		&date,
		&kind,
		&txn.CategoryID,
		&txn.AccountID,
		&txn.ExternalID,
		&txn.CategoryName,
		&txn.AccountName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, common.Storage("failed to scan transaction", err)
	}

	txn.Date, err = model.ParseDay(date)
	if err != nil {
		return nil, common.Storage("failed to decode transaction date", err)
	}
	txn.Kind, err = model.ParseKind(kind)
	if err != nil {
		return nil, common.Storage("failed to decode transaction kind", err)
	}

	return &txn, nil
}
