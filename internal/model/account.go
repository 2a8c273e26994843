package model

import (
	"time"

	"github.com/Veraticus/tally/internal/money"
)

// Account holds money. Balance is a cached projection of OpeningBalance plus the signed
// amounts of every transaction posted to the account.
type Account struct {
	CreatedAt      time.Time
	Name           string
	OpeningBalance money.Amount
	Balance        money.Amount
	ID             int64
}
