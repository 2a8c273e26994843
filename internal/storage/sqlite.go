package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)
	_ "modernc.org/sqlite"          // SQLite driver (pure Go)
)

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

const memoryPath = ":memory:"

// Options tunes how the database is opened.
type Options struct {
	Driver       string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// Option mutates Options.
type Option func(*Options)

// WithDriver selects the database/sql driver, DriverMattn or DriverModernc.
func WithDriver(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Driver = name
		}
	}
}

// WithBusyTimeout sets how long a unit of work waits for a competing writer.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.BusyTimeout = d
		}
	}
}

// WithMaxOpenConns caps the connection pool. In-memory databases always use one connection.
func WithMaxOpenConns(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxOpenConns = n
		}
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	driver string
}

var _ service.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	o := Options{
		Driver:       DriverMattn,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
	for _, opt := range opts {
		opt(&o)
	}

	inMemory := dbPath == memoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn, err := buildDSN(o.Driver, dbPath, o.BusyTimeout, inMemory)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(o.Driver, dsn)
	if err != nil {
		return nil, common.Storage("failed to open database", err)
	}

	// Every connection of an in-memory database is a separate database.
	if inMemory {
		o.MaxOpenConns = 1
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, common.Storage("failed to ping database", err)
	}

	slog.Debug("opened database", "path", dbPath, "driver", o.Driver, "max_open_conns", o.MaxOpenConns)

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		driver: o.Driver,
	}, nil
}

// buildDSN enables foreign keys, a busy timeout and BEGIN IMMEDIATE for every transaction.
// BEGIN IMMEDIATE takes the database write lock when a unit of work starts, so two units of
// work adjusting the same account serialize instead of both reading the same balance.
func buildDSN(driver, path string, busyTimeout time.Duration, inMemory bool) (string, error) {
	ms := strconv.FormatInt(busyTimeout.Milliseconds(), 10)
	params := url.Values{}

	switch driver {
	case DriverMattn:
		params.Set("_foreign_keys", "1")
		params.Set("_busy_timeout", ms)
		params.Set("_txlock", "immediate")
		if !inMemory {
			params.Set("_journal_mode", "WAL")
		}
	case DriverModernc:
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", "busy_timeout("+ms+")")
		if !inMemory {
			params.Add("_pragma", "journal_mode(WAL)")
		}
		params.Set("_txlock", "immediate")
	default:
		return "", fmt.Errorf("%w: unsupported database driver %q", common.ErrInvalidConfig, driver)
	}

	return path + "?" + params.Encode(), nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// BeginTx starts a new unit of work. Callers must Commit or Rollback it; WithUnitOfWork does
// both automatically.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (*UnitOfWork, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Storage("failed to begin transaction", err)
	}

	return &UnitOfWork{
		id: uuid.NewString(),
		tx: tx,
	}, nil
}

// WithUnitOfWork runs fn inside one database transaction. It commits when fn returns nil and
// rolls back on error or panic. fn's error is returned unchanged.
func (s *SQLiteStorage) WithUnitOfWork(ctx context.Context, fn func(service.UnitOfWork) error) error {
	uow, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
	}()

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			slog.WarnContext(ctx, "rollback failed", "uow_id", uow.id, "error", rbErr)
		}
		slog.DebugContext(ctx, "rolled back unit of work", "uow_id", uow.id, "error", err)
		return err
	}

	return uow.Commit()
}

// UnitOfWork wraps sql.Tx to implement service.UnitOfWork.
type UnitOfWork struct {
	tx *sql.Tx
	id string
}

var _ service.UnitOfWork = (*UnitOfWork)(nil)

// ID returns the unit of work identifier used in logs.
func (u *UnitOfWork) ID() string {
	return u.id
}

// Commit commits the unit of work.
func (u *UnitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return common.Storage("failed to commit transaction", err)
	}
	return nil
}

// Rollback discards every write made through the unit of work.
func (u *UnitOfWork) Rollback() error {
	return u.tx.Rollback()
}

// Unit of work methods delegate to the shared helpers with the transaction as queryable.

func (u *UnitOfWork) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountTx(ctx, u.tx, id)
}

func (u *UnitOfWork) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listAccountsTx(ctx, u.tx)
}

func (u *UnitOfWork) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryTx(ctx, u.tx, id)
}

func (u *UnitOfWork) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionTx(ctx, u.tx, id)
}

func (u *UnitOfWork) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return listTransactionsTx(ctx, u.tx, filter)
}

func (u *UnitOfWork) FindTransactionByExternalID(ctx context.Context, accountID int64, externalID string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}
	return findTransactionByExternalIDTx(ctx, u.tx, accountID, externalID)
}

func (u *UnitOfWork) InsertTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	id, err := insertTransactionTx(ctx, u.tx, txn)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "inserted transaction", "uow_id", u.id, "transaction_id", id, "account_id", txn.AccountID)
	return id, nil
}

func (u *UnitOfWork) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(txn.ID, "transaction ID"); err != nil {
		return err
	}
	return updateTransactionTx(ctx, u.tx, txn)
}

func (u *UnitOfWork) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteTransactionTx(ctx, u.tx, id)
}

func (u *UnitOfWork) AdjustBalance(ctx context.Context, accountID int64, delta money.Amount) (money.Amount, error) {
	if err := validateContext(ctx); err != nil {
		return money.Zero, err
	}
	balance, err := adjustBalanceTx(ctx, u.tx, accountID, delta)
	if err != nil {
		return money.Zero, err
	}
	slog.DebugContext(ctx, "adjusted balance",
		"uow_id", u.id,
		"account_id", accountID,
		"delta", delta.String(),
		"balance", balance.String())
	return balance, nil
}

func (u *UnitOfWork) CanDeleteAccount(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return canDeleteAccountTx(ctx, u.tx, id)
}

func (u *UnitOfWork) CanDeleteCategory(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return canDeleteCategoryTx(ctx, u.tx, id)
}

func (u *UnitOfWork) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAccountTx(ctx, u.tx, id)
}

func (u *UnitOfWork) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategoryTx(ctx, u.tx, id)
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
