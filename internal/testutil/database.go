// Package testutil provides test utilities for the tally project: file-backed test databases
// with migrations applied, plus account and category fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/money"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/Veraticus/tally/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Path       string
	Categories categories.Categories
}

// SetupTestDB creates a migrated database in a temp directory. The database is a real file so
// that several stores can open it at once.
func SetupTestDB(t *testing.T, opts ...storage.Option) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, nil, opts...)
}

// SetupTestDBWithBuilder creates a test database and seeds the categories configured on the
// builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureHousehold)
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder, opts ...storage.Option) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tally.db")
	store := OpenStore(t, path, opts...)

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}
	cats, err := builder.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		Path:       path,
		t:          t,
	}
}

// OpenStore opens and migrates a store on path. It is closed when the test ends.
func OpenStore(t *testing.T, path string, opts ...storage.Option) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(path, opts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return store
}

// MustCategory returns the seeded category with the given name or fails the test.
func (db *TestDB) MustCategory(name categories.CategoryName) model.Category {
	db.t.Helper()
	return db.Categories.MustFind(db.t, name)
}

// MustAccount creates an account with the given opening balance or fails the test.
func (db *TestDB) MustAccount(name, opening string) *model.Account {
	db.t.Helper()
	account, err := db.Storage.CreateAccount(context.Background(), name, money.MustParse(opening))
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return account
}

// Balance returns the cached balance of an account or fails the test.
func (db *TestDB) Balance(accountID int64) money.Amount {
	db.t.Helper()
	account, err := db.Storage.GetAccount(context.Background(), accountID)
	if err != nil {
		db.t.Fatalf("failed to get account %d: %v", accountID, err)
	}
	if account == nil {
		db.t.Fatalf("account %d does not exist", accountID)
	}
	return account.Balance
}
