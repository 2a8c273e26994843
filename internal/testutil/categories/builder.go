// Package categories provides test infrastructure for seeding ledger categories.
// It offers a fluent, type-safe API where each well-known name carries its kind.
//
// Example usage:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories().WithCategory(categories.CategoryRent)
//	})
package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Builder provides a fluent interface for constructing test categories.
type Builder interface {
	// WithCategory adds a single category to the builder.
	WithCategory(name CategoryName) Builder

	// WithCategories adds multiple categories to the builder.
	WithCategories(names ...CategoryName) Builder

	// WithBasicCategories adds one income and one expense category.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the provided storage, in the order they were added.
	Build(ctx context.Context, storage service.Storage) (Categories, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategorySalary    CategoryName = "Salary"
	CategoryInterest  CategoryName = "Interest"
	CategoryRefunds   CategoryName = "Refunds"
	CategoryGroceries CategoryName = "Groceries"
	CategoryRent      CategoryName = "Rent"
	CategoryUtilities CategoryName = "Utilities"
	CategoryDining    CategoryName = "Dining"
)

var incomeNames = map[CategoryName]bool{
	CategorySalary:   true,
	CategoryInterest: true,
	CategoryRefunds:  true,
}

// Kind returns the kind a category of this name is created with. Unknown names are expenses.
func (c CategoryName) Kind() model.Kind {
	if incomeNames[c] {
		return model.KindIncome
	}
	return model.KindExpense
}

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if c[i].Name == name.String() {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

type categoryBuilder struct {
	t     *testing.T
	seen  map[CategoryName]bool
	names []CategoryName
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:    t,
		seen: make(map[CategoryName]bool),
	}
}

func (b *categoryBuilder) WithCategory(name CategoryName) Builder {
	if !b.seen[name] {
		b.seen[name] = true
		b.names = append(b.names, name)
	}
	return b
}

func (b *categoryBuilder) WithCategories(names ...CategoryName) Builder {
	for _, name := range names {
		b.WithCategory(name)
	}
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithFixture(FixtureMinimal)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	return b.WithCategories(fixture.Categories()...)
}

func (b *categoryBuilder) Build(ctx context.Context, storage service.Storage) (Categories, error) {
	b.t.Helper()

	result := make(Categories, 0, len(b.names))
	for _, name := range b.names {
		cat, err := storage.CreateCategory(ctx, name.String(), "Test description for "+name.String(), name.Kind())
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		result = append(result, *cat)
	}
	return result, nil
}
