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
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
)

const selectAccountSQL = `SELECT id, name, opening_balance, balance, created_at FROM accounts`

// CreateAccount creates a new account whose opening and current balance are initialBalance.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, initialBalance money.Amount) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Validationf("account name cannot be empty")
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, opening_balance, balance, created_at)
		VALUES (?, ?, ?, ?)`,
		name, initialBalance, initialBalance, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, common.Storage("failed to create account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, common.Storage("failed to get account ID", err)
	}

	slog.InfoContext(ctx, "created account", "account_id", id, "name", name, "balance", initialBalance.String())

	return &model.Account{
		ID:             id,
		Name:           name,
		OpeningBalance: initialBalance,
		Balance:        initialBalance,
		CreatedAt:      now,
	}, nil
}

// GetAccount returns an account by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountTx(ctx, s.db, id)
}

func getAccountTx(ctx context.Context, q queryable, id int64) (*model.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, selectAccountSQL+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts ordered by ID.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listAccountsTx(ctx, s.db)
}

func listAccountsTx(ctx context.Context, q queryable) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, selectAccountSQL+` ORDER BY id ASC`)
	if err != nil {
		return nil, common.Storage("failed to query accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, common.Storage("error iterating accounts", err)
	}

	slog.DebugContext(ctx, "retrieved accounts", "count", len(accounts))
	return accounts, nil
}

// UpdateAccount renames an account. Balances are only ever changed by the ledger.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return common.Validationf("account name cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return common.Storage("failed to update account", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return common.NotFoundf("account %d", id)
	}

	return nil
}

// DeleteAccount deletes an account that no transaction references.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		return u.DeleteAccount(ctx, id)
	})
}

func deleteAccountTx(ctx context.Context, q queryable, id int64) error {
	ok, err := canDeleteAccountTx(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("account %d: %w", id, common.ErrInUse)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return common.Storage("failed to delete account", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return common.NotFoundf("account %d", id)
	}

	slog.InfoContext(ctx, "deleted account", "account_id", id)
	return nil
}

func scanAccount(row scanner) (*model.Account, error) {
	var (
		account   model.Account
		createdAt string
	)
	if err := row.Scan(&account.ID, &account.Name, &account.OpeningBalance, &account.Balance, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, common.Storage("failed to scan account", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, common.Storage("failed to parse account creation time", err)
	}
	account.CreatedAt = parsed

	return &account, nil
}
