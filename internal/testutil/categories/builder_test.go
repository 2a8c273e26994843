package categories_test

import (
	"context"
	"testing"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/Veraticus/tally/internal/testutil/categories"
)

func TestBuilder_WithCategory(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategory(categories.CategoryGroceries)
	})

	cat := db.MustCategory(categories.CategoryGroceries)
	got, err := db.Storage.GetCategory(context.Background(), cat.ID)
	if err != nil {
		t.Fatalf("failed to get category: %v", err)
	}
	if got == nil {
		t.Fatal("expected category to exist")
	}
	if got.Kind != model.KindExpense {
		t.Errorf("expected kind %q, got %q", model.KindExpense, got.Kind)
	}
}

func TestBuilder_KeepsOrderAndDeduplicates(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithBasicCategories().WithCategories(categories.CategoryRent, categories.CategorySalary)
	})

	want := []string{"Salary", "Groceries", "Rent"}
	if len(db.Categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(db.Categories))
	}
	for i, name := range want {
		if db.Categories[i].Name != name {
			t.Errorf("category %d: expected %q, got %q", i, name, db.Categories[i].Name)
		}
	}
	if db.MustCategory(categories.CategorySalary).Kind != model.KindIncome {
		t.Error("salary should be an income category")
	}
}

func TestBuilder_Fixture(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithFixture(categories.FixtureHousehold)
	})

	stored, err := db.Storage.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("failed to list categories: %v", err)
	}
	if len(stored) != len(categories.FixtureHousehold.Categories()) {
		t.Errorf("expected %d categories, got %d", len(categories.FixtureHousehold.Categories()), len(stored))
	}
	if db.Categories.Find("Missing") != nil {
		t.Error("Find should return nil for unknown names")
	}
}
