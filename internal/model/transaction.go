package model

import (
	"time"

	"github.com/Veraticus/tally/internal/money"
)

// DateLayout is the persisted form of a calendar date.
const DateLayout = "2006-01-02"

// Transaction is a single posting against an account. Amount is always a non-negative
// magnitude; Kind decides the direction of its effect on the balance.
type Transaction struct {
	Date        time.Time
	Description string
	ExternalID  string // Identity in an import source, e.g. an OFX FITID
	Kind        Kind
	Amount      money.Amount
	ID          int64
	CategoryID  int64
	AccountID   int64

	// Decoration filled by joined reads, never persisted on the transaction row.
	CategoryName string
	AccountName  string
}

// SignedAmount is the value the transaction adds to its account balance:
// +Amount for income, -Amount for expense.
func (t *Transaction) SignedAmount() money.Amount {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Day truncates a time to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
