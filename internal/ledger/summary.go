package ledger

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"
)

// Summary is the dashboard view over a set of transactions.
type Summary struct {
	Balance  money.Amount // Sum of account balances, or the filtered account's balance
	Income   money.Amount
	Expenses money.Amount
	Count    int
}

// Net is income minus expenses.
func (s Summary) Net() money.Amount {
	return s.Income.Sub(s.Expenses)
}

// Summarize totals the transactions matching filter. Pagination fields are ignored so the
// totals always cover the whole filtered set.
func (e *Engine) Summarize(ctx context.Context, filter service.TransactionFilter) (*Summary, error) {
	filter.Limit, filter.Offset = 0, 0

	var summary Summary
	err := e.storage.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		accounts, err := u.ListAccounts(ctx)
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if filter.AccountID == 0 || filter.AccountID == account.ID {
				summary.Balance = summary.Balance.Add(account.Balance)
			}
		}

		txns, err := u.ListTransactions(ctx, filter)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			switch txn.Kind {
			case model.KindIncome:
				summary.Income = summary.Income.Add(txn.Amount)
			case model.KindExpense:
				summary.Expenses = summary.Expenses.Add(txn.Amount)
			}
		}
		summary.Count = len(txns)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
