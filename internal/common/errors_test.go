package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyWrapping(t *testing.T) {
	driverErr := errors.New("disk I/O error")
	err := Storage("insert transaction", driverErr)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "insert transaction")

	assert.ErrorIs(t, ErrStaleBalance, ErrConflict)
	assert.ErrorIs(t, ErrInUse, ErrConflict)
	assert.NotErrorIs(t, ErrInUse, ErrStaleBalance)

	assert.ErrorIs(t, Validationf("amount %s is negative", "-1"), ErrValidation)
	assert.ErrorIs(t, NotFoundf("account %d", 7), ErrNotFound)
}

func TestExplain(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{Validationf("bad"), "invalid input"},
		{NotFoundf("account 1"), "no such record"},
		{fmt.Errorf("account 1: %w", ErrInUse), "record is still in use"},
		{fmt.Errorf("update: %w", ErrStaleBalance), "the record changed underneath us"},
		{Storage("ping", errors.New("boom")), "database error"},
	}

	for _, tt := range tests {
		explained := Explain(tt.err)
		var userErr *UserError
		if assert.ErrorAs(t, explained, &userErr) {
			assert.Contains(t, userErr.UserMessage, tt.message)
		}
		assert.ErrorIs(t, explained, tt.err)
	}

	plain := errors.New("plain")
	assert.Same(t, plain, Explain(plain))
	assert.NoError(t, Explain(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("adjust: %w", ErrStaleBalance)))
	assert.False(t, IsRetryable(ErrInUse))
	assert.False(t, IsRetryable(NotFoundf("x")))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
}
