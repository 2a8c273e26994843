package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

const selectCategorySQL = `SELECT id, name, description, kind FROM categories`

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, kind model.Kind) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(name, kind); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, kind)
		VALUES (?, ?, ?)`,
		name, description, string(kind))
	if err != nil {
		return nil, common.Storage("failed to create category", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, common.Storage("failed to get category ID", err)
	}

	slog.InfoContext(ctx, "created category", "category_id", id, "name", name, "kind", kind)

	return &model.Category{
		ID:          id,
		Name:        name,
		Description: description,
		Kind:        kind,
	}, nil
}

// GetCategory returns a category by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryTx(ctx, s.db, id)
}

func getCategoryTx(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	cat, err := scanCategory(q.QueryRowContext(ctx, selectCategorySQL+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCategories returns all categories ordered by ID.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectCategorySQL+` ORDER BY id ASC`)
	if err != nil {
		return nil, common.Storage("failed to query categories", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, common.Storage("error iterating categories", err)
	}

	slog.DebugContext(ctx, "retrieved categories", "count", len(categories))
	return categories, nil
}

// UpdateCategory updates a category's name, description and kind.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, name, description string, kind model.Kind) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(name, kind); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?, kind = ?
		WHERE id = ?`,
		strings.TrimSpace(name), strings.TrimSpace(description), string(kind), id)
	if err != nil {
		return common.Storage("failed to update category", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return common.NotFoundf("category %d", id)
	}

	return nil
}

// DeleteCategory deletes a category that no transaction references.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.WithUnitOfWork(ctx, func(u service.UnitOfWork) error {
		return u.DeleteCategory(ctx, id)
	})
}

func deleteCategoryTx(ctx context.Context, q queryable, id int64) error {
	ok, err := canDeleteCategoryTx(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d: %w", id, common.ErrInUse)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return common.Storage("failed to delete category", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return common.Storage("failed to get affected rows", err)
	}
	if rows == 0 {
		return common.NotFoundf("category %d", id)
	}

	slog.InfoContext(ctx, "deleted category", "category_id", id)
	return nil
}

func scanCategory(row scanner) (*model.Category, error) {
	var (
		cat  model.Category
		kind string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, common.Storage("failed to scan category", err)
	}

	parsed, err := model.ParseKind(kind)
	if err != nil {
		return nil, common.Storage("failed to decode category kind", err)
	}
	cat.Kind = parsed

	return &cat, nil
}
