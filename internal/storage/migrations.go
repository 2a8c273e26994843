package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Veraticus/tally/internal/common"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	// m.Close would also close the database driver, which owns our shared *sql.DB.
	defer func() { _ = src.Close() }()

	var driver database.Driver
	switch s.driver {
	case DriverMattn:
		driver, err = migratesqlite3.WithInstance(s.db, &migratesqlite3.Config{})
	case DriverModernc:
		driver, err = migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("%w: unsupported database driver %q", common.ErrInvalidConfig, s.driver)
	}
	if err != nil {
		return common.Storage("failed to create migration driver", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, driver)
	if err != nil {
		return common.Storage("failed to create migrator", err)
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return common.Storage("failed to get schema version", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return common.Storage("failed to apply migrations", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return common.Storage("failed to verify final schema version", err)
	}
	if dirty {
		return fmt.Errorf("%w: schema version %d is dirty", common.ErrStorage, version)
	}
	if version != ExpectedSchemaVersion {
		return fmt.Errorf("%w: database schema version mismatch: expected %d, got %d",
			common.ErrStorage, ExpectedSchemaVersion, version)
	}

	if version != before {
		slog.Info("Applied migrations", "from_version", before, "to_version", version)
	}

	return nil
}

// SchemaVersion reports the applied schema version. Migrate must have run at least once.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, common.Storage("failed to read schema version", err)
	}
	return version, nil
}
