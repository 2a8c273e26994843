package ledger

import (
	"context"
	"log/slog"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
)

// Discrepancy is an account whose cached balance disagrees with its transaction log.
type Discrepancy struct {
	AccountName string
	Cached      money.Amount
	Computed    money.Amount
	AccountID   int64
}

// Drift is the correction that brings the cached balance back in line.
func (d Discrepancy) Drift() money.Amount {
	return d.Computed.Sub(d.Cached)
}

// Audit recomputes every balance as opening balance plus the signed sum of its transactions
// and reports the accounts that disagree. It writes nothing.
func (e *Engine) Audit(ctx context.Context) ([]Discrepancy, error) {
	var found []Discrepancy
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		var err error
		found, err = audit(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "audited balances", "discrepancies", len(found))
	return found, nil
}

// Repair audits the ledger and corrects each discrepancy through the balance adjuster, all in
// one unit of work. It returns what was corrected.
func (e *Engine) Repair(ctx context.Context) ([]Discrepancy, error) {
	var fixed []Discrepancy
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		found, err := audit(ctx, u)
		if err != nil {
			return err
		}
		for _, d := range found {
			if _, err := u.AdjustBalance(ctx, d.AccountID, d.Drift()); err != nil {
				return err
			}
			slog.WarnContext(ctx, "repaired balance drift",
				"uow_id", u.ID(),
				"account_id", d.AccountID,
				"cached", d.Cached.String(),
				"balance", d.Computed.String())
		}
		fixed = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixed, nil
}

func audit(ctx context.Context, u service.UnitOfWork) ([]Discrepancy, error) {
	accounts, err := u.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	var found []Discrepancy
	for _, account := range accounts {
		txns, err := u.ListTransactions(ctx, service.TransactionFilter{AccountID: account.ID})
		if err != nil {
			return nil, err
		}

		computed := account.OpeningBalance.Add(signedTotal(txns))
		if !computed.Equal(account.Balance) {
			found = append(found, Discrepancy{
				AccountID:   account.ID,
				AccountName: account.Name,
				Cached:      account.Balance,
				Computed:    computed,
			})
		}
	}
	return found, nil
}

func signedTotal(txns []model.Transaction) money.Amount {
	total := money.Zero
	for i := range txns {
		total = total.Add(txns[i].SignedAmount())
	}
	return total
}
