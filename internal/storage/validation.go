// Package storage provides the data persistence layer for the tally application.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Validation errors. Each wraps common.ErrValidation.
var (
	ErrNilContext         = fmt.Errorf("%w: context cannot be nil", common.ErrValidation)
	ErrEmptyString        = fmt.Errorf("%w: string parameter cannot be empty", common.ErrValidation)
	ErrNilParameter       = fmt.Errorf("%w: parameter cannot be nil", common.ErrValidation)
	ErrInvalidID          = fmt.Errorf("%w: identifier must be positive", common.ErrValidation)
	ErrInvalidDateRange   = fmt.Errorf("%w: start date must be before end date", common.ErrValidation)
	ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", common.ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", common.ErrValidation)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validateTransaction validates a transaction before it is written.
// Identity is not checked here; inserts have no ID yet.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidTransaction, txn.Amount)
	}
	if !txn.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidTransaction, txn.Kind)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID <= 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category ID", ErrInvalidTransaction)
	}
	return nil
}

// validateCategory validates category fields.
func validateCategory(name string, kind model.Kind) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidCategory, kind)
	}
	return nil
}

// validateDateRange checks that a date range is well-formed.
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidDateRange, end.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	return nil
}

// validateFilter checks a transaction filter before it is turned into SQL.
func validateFilter(filter service.TransactionFilter) error {
	if err := validateDateRange(filter.StartDate, filter.EndDate); err != nil {
		return err
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidTransaction, filter.Kind)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return common.Validationf("limit and offset must not be negative")
	}
	return nil
}
