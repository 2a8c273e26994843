package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{name: "valid string", str: "test", paramName: "param"},
		{name: "empty string", str: "", paramName: "param", wantErr: true},
		{name: "whitespace only", str: " \t\n ", paramName: "param", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	validDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := func() *model.Transaction {
		return &model.Transaction{
			Description: "Coffee",
			Amount:      money.MustParse("3.50"),
			Date:        validDate,
			Kind:        model.KindExpense,
			CategoryID:  1,
			AccountID:   1,
		}
	}

	tests := []struct {
		txn     *model.Transaction
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid transaction",
			txn:  valid(),
		},
		{
			name: "zero amount is allowed",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Amount = money.Zero
				return txn
			}(),
		},
		{
			name:    "nil transaction",
			txn:     nil,
			wantErr: true,
			errMsg:  "transaction",
		},
		{
			name: "negative amount",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Amount = money.MustParse("-3.50")
				return txn
			}(),
			wantErr: true,
			errMsg:  "negative",
		},
		{
			name: "invalid kind",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Kind = "transfer"
				return txn
			}(),
			wantErr: true,
			errMsg:  "kind",
		},
		{
			name: "missing date",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Date = time.Time{}
				return txn
			}(),
			wantErr: true,
			errMsg:  "missing date",
		},
		{
			name: "missing account ID",
			txn: func() *model.Transaction {
				txn := valid()
				txn.AccountID = 0
				return txn
			}(),
			wantErr: true,
			errMsg:  "missing account ID",
		},
		{
			name: "missing category ID",
			txn: func() *model.Transaction {
				txn := valid()
				txn.CategoryID = -1
				return txn
			}(),
			wantErr: true,
			errMsg:  "missing category ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, common.ErrValidation) {
				t.Errorf("validateTransaction() error should be a validation error, got %v", err)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validateTransaction() error should contain %s, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if err := validateDateRange(nil, nil); err != nil {
		t.Errorf("open range should be valid, got %v", err)
	}
	if err := validateDateRange(&jan, nil); err != nil {
		t.Errorf("half-open range should be valid, got %v", err)
	}
	if err := validateDateRange(&jan, &jan); err != nil {
		t.Errorf("single-day range should be valid, got %v", err)
	}
	if err := validateDateRange(&feb, &jan); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("reversed range should be ErrInvalidDateRange, got %v", err)
	}
}
