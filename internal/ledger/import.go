package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/Veraticus/tally/internal/service"
)

// ImportTarget says where imported entries are posted.
type ImportTarget struct {
	AccountID         int64
	IncomeCategoryID  int64
	ExpenseCategoryID int64
}

// ImportResult counts what happened to each entry.
type ImportResult struct {
	Errors  []error
	Posted  int
	Skipped int
	Failed  int
}

// Importer posts statement entries through the engine.
type Importer struct {
	engine *Engine

	// OnEntry, when set, is called after each entry is handled.
	OnEntry func(done, total int)
}

// NewImporter creates an importer that posts through engine.
func NewImporter(engine *Engine) *Importer {
	return &Importer{engine: engine}
}

// Import posts each entry in its own unit of work. Entries whose FITID is already recorded for
// the target account are skipped, so importing the same statement twice is harmless. A failed
// entry is counted and the import continues; only cancellation stops it early.
func (i *Importer) Import(ctx context.Context, entries []ofx.Entry, target ImportTarget) (*ImportResult, error) {
	if target.AccountID <= 0 || target.IncomeCategoryID <= 0 || target.ExpenseCategoryID <= 0 {
		return nil, common.Validationf("import needs an account, an income category and an expense category")
	}

	result := &ImportResult{}
	for n, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		posted, err := i.importEntry(ctx, entry, target)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("entry %q: %w", entry.FITID, err))
			slog.WarnContext(ctx, "failed to import entry", "fitid", entry.FITID, "error", err)
		case posted:
			result.Posted++
		default:
			result.Skipped++
		}

		if i.OnEntry != nil {
			i.OnEntry(n+1, len(entries))
		}
	}

	slog.InfoContext(ctx, "imported entries",
		"account_id", target.AccountID,
		"posted", result.Posted,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}

var errDuplicate = errors.New("already imported")

func (i *Importer) importEntry(ctx context.Context, entry ofx.Entry, target ImportTarget) (bool, error) {
	txn := &model.Transaction{
		Date:        entry.Date,
		Description: entry.Description,
		ExternalID:  entry.FITID,
		Kind:        entry.Kind,
		Amount:      entry.Amount,
		AccountID:   target.AccountID,
		CategoryID:  target.ExpenseCategoryID,
	}
	if entry.Kind == model.KindIncome {
		txn.CategoryID = target.IncomeCategoryID
	}
	if err := checkTransaction(txn); err != nil {
		return false, err
	}

	err := i.engine.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		if entry.FITID != "" {
			existing, err := u.FindTransactionByExternalID(ctx, target.AccountID, entry.FITID)
			if err != nil {
				return err
			}
			if existing != nil {
				return errDuplicate
			}
		}
		_, err := i.engine.post(ctx, u, txn)
		return err
	})
	if errors.Is(err, errDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
