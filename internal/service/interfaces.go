// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no constraint".
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Kind       model.Kind
	AccountID  int64
	CategoryID int64
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, name string, initialBalance money.Amount) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, id int64, name string) error
	DeleteAccount(ctx context.Context, id int64) error

	// Category operations
	CreateCategory(ctx context.Context, name, description string, kind model.Kind) (*model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string, kind model.Kind) error
	DeleteCategory(ctx context.Context, id int64) error

	// Transaction reads. Writes only happen inside a UnitOfWork.
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Referential guard
	CanDeleteAccount(ctx context.Context, id int64) (bool, error)
	CanDeleteCategory(ctx context.Context, id int64) (bool, error)

	// Database management
	Migrate(ctx context.Context) error
	UnitOfWorkRunner
	Close() error
}

// UnitOfWorkRunner runs a function inside one atomic unit of work. The unit of work commits
// when fn returns nil and rolls back otherwise; fn's error is returned unchanged.
type UnitOfWorkRunner interface {
	WithUnitOfWork(ctx context.Context, fn func(UnitOfWork) error) error
}

// UnitOfWork is a transaction-scoped handle. Every read and write made through it belongs to
// the same all-or-nothing database transaction.
type UnitOfWork interface {
	// ID identifies the unit of work in logs.
	ID() string

	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)

	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	FindTransactionByExternalID(ctx context.Context, accountID int64, externalID string) (*model.Transaction, error)
	InsertTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	// AdjustBalance adds delta to the account balance and returns the new balance.
	// It is the only way an account balance changes.
	AdjustBalance(ctx context.Context, accountID int64, delta money.Amount) (money.Amount, error)

	CanDeleteAccount(ctx context.Context, id int64) (bool, error)
	CanDeleteCategory(ctx context.Context, id int64) (bool, error)
	DeleteAccount(ctx context.Context, id int64) error
	DeleteCategory(ctx context.Context, id int64) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
