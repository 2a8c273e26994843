// Package ledger keeps account balances consistent with the transactions posted against them.
//
// Every operation runs inside exactly one unit of work: the transaction row and the balance
// adjustments it causes are committed together or not at all.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Engine posts, revises and retracts transactions.
type Engine struct {
	storage service.Storage
}

// NewEngine creates a ledger engine on top of the given storage.
func NewEngine(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// Post records a new transaction and applies its signed amount to the account balance.
// It returns the stored, decorated transaction.
func (e *Engine) Post(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := checkTransaction(txn); err != nil {
		return nil, err
	}

	var posted *model.Transaction
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		var err error
		posted, err = e.post(ctx, u, txn)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "posted transaction",
		"transaction_id", posted.ID,
		"account_id", posted.AccountID,
		"kind", posted.Kind,
		"amount", posted.Amount.String())
	return posted, nil
}

func (e *Engine) post(ctx context.Context, u service.UnitOfWork, txn *model.Transaction) (*model.Transaction, error) {
	if err := e.checkReferences(ctx, u, txn); err != nil {
		return nil, err
	}

	id, err := u.InsertTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}

	if _, err := u.AdjustBalance(ctx, txn.AccountID, txn.SignedAmount()); err != nil {
		return nil, err
	}

	return reload(ctx, u, id)
}

// Revise replaces the transaction identified by txn.ID. The old effect is removed from the old
// account and the new effect applied to the new account, which may differ.
func (e *Engine) Revise(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := checkTransaction(txn); err != nil {
		return nil, err
	}
	if txn.ID <= 0 {
		return nil, common.Validationf("transaction ID must be positive, got %d", txn.ID)
	}

	var revised *model.Transaction
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		old, err := u.GetTransaction(ctx, txn.ID)
		if err != nil {
			return err
		}
		if old == nil {
			return common.NotFoundf("transaction %d", txn.ID)
		}
		if err := e.checkReferences(ctx, u, txn); err != nil {
			return err
		}

		next := *txn
		if next.ExternalID == "" {
			next.ExternalID = old.ExternalID
		}

		if _, err := u.AdjustBalance(ctx, old.AccountID, old.SignedAmount().Neg()); err != nil {
			return err
		}
		if _, err := u.AdjustBalance(ctx, next.AccountID, next.SignedAmount()); err != nil {
			return err
		}
		if err := u.UpdateTransaction(ctx, &next); err != nil {
			return err
		}

		revised, err = reload(ctx, u, next.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "revised transaction",
		"transaction_id", revised.ID,
		"account_id", revised.AccountID,
		"kind", revised.Kind,
		"amount", revised.Amount.String())
	return revised, nil
}

// Retract deletes a transaction and removes its effect from the account balance.
func (e *Engine) Retract(ctx context.Context, id int64) error {
	if id <= 0 {
		return common.Validationf("transaction ID must be positive, got %d", id)
	}

	var accountID int64
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		txn, err := u.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if txn == nil {
			return common.NotFoundf("transaction %d", id)
		}
		accountID = txn.AccountID

		if _, err := u.AdjustBalance(ctx, txn.AccountID, txn.SignedAmount().Neg()); err != nil {
			return err
		}
		return u.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "retracted transaction", "transaction_id", id, "account_id", accountID)
	return nil
}

// checkReferences verifies the account and category exist. A category whose kind differs from
// the transaction is accepted with a warning.
func (e *Engine) checkReferences(ctx context.Context, u service.UnitOfWork, txn *model.Transaction) error {
	account, err := u.GetAccount(ctx, txn.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return common.NotFoundf("account %d", txn.AccountID)
	}

	category, err := u.GetCategory(ctx, txn.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return common.NotFoundf("category %d", txn.CategoryID)
	}

	if category.Kind != txn.Kind {
		slog.WarnContext(ctx, "transaction kind differs from its category",
			"uow_id", u.ID(),
			"category_id", category.ID,
			"category_kind", category.Kind,
			"transaction_kind", txn.Kind)
	}
	return nil
}

func reload(ctx context.Context, u service.UnitOfWork, id int64) (*model.Transaction, error) {
	txn, err := u.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: transaction %d vanished inside its unit of work", common.ErrConflict, id)
	}
	return txn, nil
}

func checkTransaction(txn *model.Transaction) error {
	switch {
	case txn == nil:
		return common.Validationf("transaction is required")
	case txn.Amount.IsNegative():
		return common.Validationf("amount %s is negative; use kind to set the direction", txn.Amount)
	case !txn.Kind.Valid():
		return common.Validationf("kind %q is neither income nor expense", txn.Kind)
	case txn.Date.IsZero():
		return common.Validationf("date is required")
	case txn.AccountID <= 0:
		return common.Validationf("account ID must be positive, got %d", txn.AccountID)
	case txn.CategoryID <= 0:
		return common.Validationf("category ID must be positive, got %d", txn.CategoryID)
	}
	return nil
}
