// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKind is returned when a string names neither income nor expense.
var ErrInvalidKind = errors.New("invalid kind")

// Kind classifies a transaction or category as money coming in or going out.
type Kind string

const (
	// KindIncome increases an account balance.
	KindIncome Kind = "income"
	// KindExpense decreases an account balance.
	KindExpense Kind = "expense"
)

// ParseKind parses a kind case-insensitively, so "Expense", "EXPENSE" and " expense " are all
// KindExpense.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) String() string {
	return string(k)
}
